// Package cli implements the cobra command tree for afmtool.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pbenes/gooddata-data-layer/internal/config"
	"github.com/pbenes/gooddata-data-layer/internal/logging"
	"github.com/pbenes/gooddata-data-layer/internal/version"
)

// Process exit codes.
const (
	exitError      = 1
	exitUsage      = 2
	exitValidation = 7
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	return run(NewRootCommand())
}

// run executes cmd and maps its error to an exit code, printing the error
// to the command's stderr.
func run(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return exitError
	}

	return 0
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "afmtool",
		Short: "Merge and redistribute filters in AFM execution definitions",
		Long: `afmtool prepares AnalyticalForm Model (AFM) documents for execution.

It reads AFMs (bare or wrapped in an execution envelope) from JSON or
YAML files, merges user supplied filters into them, drops filters that
carry no values, and moves global date filters onto the measures that
lack their own date filter whenever another measure already has one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: exitUsage, Err: err}
			}

			if err := cfg.Extensions.CheckVersion(version.Version()); err != nil {
				return &ExitError{Code: exitUsage, Err: err}
			}

			logger := logging.Setup(cfg)

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
				slog.String("configFile", cfg.ConfigFile),
				slog.Any("presets", cfg.Extensions.PresetNames()),
			)

			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .afmtool.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: exitUsage, Err: err}
	})

	cmd.AddCommand(
		newVersionCommand(),
		newMergeCommand(),
		newRedistributeCommand(),
		newPrepareCommand(),
		newInspectCommand(),
		newValidateCommand(),
		newDiffCommand(),
		newPlanCommand(),
		newWatchCommand(),
		newCompletionCommand(),
	)

	return cmd
}
