package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scancmp/internal/testutil"
)

func newSuiteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suite MANIFEST...",
		Short: "Run the fixture cases of TOML manifests",
		Long: `Run every case declared in one or more TOML manifests.

A manifest lists cases; paths are relative to the manifest:

  version = 1

  [[case]]
  name = "basic"
  kind = "json-scan"          # json-scan, jsonlines-scan or json
  expected = "expected/result.json"
  result = "result.json"
  remove_file_date = true     # optional, overrides the flag

Examples:
  scancmp suite testdata/scans/basic/fixtures.toml
  scancmp suite --regen testdata/scans/*/fixtures.toml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(cmd, opts, args)
		},
	}
}

func runSuite(cmd *cobra.Command, opts *globalOptions, manifests []string) error {
	c, err := opts.checker(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	st := newStyles(out)

	total, failed := 0, 0
	for _, path := range manifests {
		m, err := testutil.LoadManifest(path)
		if err != nil {
			return err
		}

		for _, r := range c.RunManifest(m) {
			total++
			if r.Err == nil {
				fmt.Fprintf(out, "%s    %s\n", st.pass.Render("ok"), r.Case.Name)
				continue
			}
			failed++
			fmt.Fprintf(out, "%s  %s\n%s\n", st.fail.Render("FAIL"), r.Case.Name, st.colorize(formatError(r.Err)))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d fixture cases failed", failed, total)
	}
	fmt.Fprintf(out, "%d fixture cases passed\n", total)
	return nil
}
