package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	scerrors "scancmp/internal/errors"
	"scancmp/internal/testutil"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, newStyles(os.Stderr).colorize(formatError(err)))
		os.Exit(1)
	}
}

// formatError renders err for the terminal: mismatches as their diff,
// coded errors with their suggested fixes.
func formatError(err error) string {
	if m, ok := testutil.MismatchOf(err); ok {
		return m.String()
	}

	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(err.Error())

	var e *scerrors.Error
	if errors.As(err, &e) {
		for _, fix := range e.SuggestedFixes {
			fmt.Fprintf(&b, "\n  hint: %s (%s)", fix.Description, fix.Command)
		}
	}
	return b.String()
}
