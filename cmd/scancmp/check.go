package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scancmp/internal/testutil"
)

var checkKinds = []string{testutil.KindJSONScan, testutil.KindJSONLinesScan, testutil.KindJSON}

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check KIND EXPECTED RESULT",
		Short: "Compare a result file with its expected fixture",
		Long: `Compare a result file with its expected fixture.

Kinds:
  json-scan       single-document scan result, files sorted by path
  jsonlines-scan  JSON-Lines scan result; the expected file is a JSON array
  json            any JSON document, compared as is

Examples:
  scancmp check json-scan testdata/expected.json out/scan.json
  scancmp check jsonlines-scan --remove-file-date testdata/expected.json out/scan.jsonl
  scancmp check json-scan --regen testdata/expected.json out/scan.json`,
		Args:      cobra.ExactArgs(3),
		ValidArgs: checkKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}
}

func runCheck(cmd *cobra.Command, opts *globalOptions, args []string) error {
	kind, expected, result := args[0], args[1], args[2]
	if !isCheckKind(kind) {
		return fmt.Errorf("unknown kind %q, want one of %s", kind, strings.Join(checkKinds, ", "))
	}

	c, err := opts.checker(cmd)
	if err != nil {
		return err
	}

	tc := testutil.Case{Name: expected, Kind: kind, Expected: expected, Result: result}
	if err := c.RunCase(tc); err != nil {
		return err
	}

	st := newStyles(cmd.OutOrStdout())
	if c.Regen {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", st.hint.Render("regenerated"), expected)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", st.pass.Render("ok"), expected)
	}
	return nil
}

func isCheckKind(kind string) bool {
	for _, k := range checkKinds {
		if k == kind {
			return true
		}
	}
	return false
}
