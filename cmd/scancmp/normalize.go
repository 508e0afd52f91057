package main

import (
	"github.com/spf13/cobra"

	"scancmp/internal/scanresult"
)

func newNormalizeCmd(opts *globalOptions) *cobra.Command {
	var (
		jsonLines bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "normalize FILE",
		Short: "Print a scan result the way it is compared",
		Long: `Load a scan result, streamline it and print it as indented JSON.

The output is what "check" compares, which makes it a starting point for a
new expected fixture. JSON-Lines input is printed as a JSON array.

Examples:
  scancmp normalize out/scan.json
  scancmp normalize --jsonlines out/scan.jsonl -o testdata/expected.json.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.checker(cmd)
			if err != nil {
				return err
			}

			var v any
			if jsonLines {
				v, err = c.NormalizeJSONLinesScan(args[0])
			} else {
				v, err = c.NormalizeJSONScan(args[0])
			}
			if err != nil {
				return err
			}

			if output != "" {
				return scanresult.WriteFile(output, v)
			}
			data, err := scanresult.Encode(v)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonLines, "jsonlines", false, "Read FILE as JSON Lines")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout (.gz and .zst are compressed)")
	return cmd
}
