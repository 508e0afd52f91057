package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"scancmp/internal/config"
	"scancmp/internal/slogutil"
	"scancmp/internal/testutil"
	"scancmp/internal/version"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	regen          bool
	removeFileDate bool
	checkHeaders   bool
	keepUUID       bool
	configDir      string
	logLevel       string
	verbosity      int
	quiet          bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "scancmp",
		Short: "Compare scan results with expected fixtures",
		Long: `scancmp compares scanner output with expected fixture files after removing
the data that changes from one run to the next: timestamps, tool versions,
package uuids, file dates and the middle of multi-line error traces.

Set ` + config.RegenEnvVar + `=1 or pass --regen to overwrite the
expected fixtures with the current results instead of comparing.`,
		Version:       version.Info(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("scancmp version {{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.BoolVar(&opts.regen, "regen", false, "Overwrite expected fixtures with the results")
	pf.BoolVar(&opts.removeFileDate, "remove-file-date", false, "Drop the date of every file before comparing")
	pf.BoolVar(&opts.checkHeaders, "check-headers", false, "Keep scan headers in the comparison")
	pf.BoolVar(&opts.keepUUID, "keep-uuid", false, "Compare package identifiers with their uuid qualifier as is")
	pf.StringVar(&opts.configDir, "config-dir", ".", "Directory holding an optional scancmp.{json,yaml,toml}")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.CountVarP(&opts.verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "Disable logging")

	cmd.AddCommand(
		newCheckCmd(opts),
		newNormalizeCmd(opts),
		newSuiteCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// config resolves configuration from defaults, the config file, the
// environment and finally the flags set on the command line.
func (o *globalOptions) config(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configDir)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("regen") {
		cfg.Regen = o.regen
	}
	if flags.Changed("remove-file-date") {
		cfg.RemoveFileDate = o.removeFileDate
	}
	if flags.Changed("check-headers") {
		cfg.CheckHeaders = o.checkHeaders
	}
	if flags.Changed("keep-uuid") {
		cfg.RemoveUUID = !o.keepUUID
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *globalOptions) logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level := slogutil.LevelFromString(cfg.Logging.Level)
	if o.quiet || o.verbosity > 0 {
		level = slogutil.LevelFromVerbosity(o.verbosity, o.quiet)
	}
	return slogutil.NewLogger(cmd.ErrOrStderr(), level)
}

// checker builds the Checker every command runs with.
func (o *globalOptions) checker(cmd *cobra.Command) (*testutil.Checker, error) {
	cfg, err := o.config(cmd)
	if err != nil {
		return nil, err
	}
	logger := o.logger(cmd, cfg)
	logger.Debug("Resolved configuration",
		"regen", cfg.Regen,
		"removeFileDate", cfg.RemoveFileDate,
		"checkHeaders", cfg.CheckHeaders,
		"removeUuid", cfg.RemoveUUID,
		"platform", cfg.Platform,
	)
	return testutil.NewChecker(cfg, logger), nil
}
