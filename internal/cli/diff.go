package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbenes/gooddata-data-layer/internal/config"
	"github.com/pbenes/gooddata-data-layer/internal/plan"
)

// errDifferences is returned with --exit-code when the prepared document
// differs from its input.
var errDifferences = errors.New("prepared documents differ from input")

type diffOptions struct {
	pipelineOptions

	// Serialization used on both sides of the diff: json or yaml.
	format string

	exitCode bool
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <file>",
		Short: "Show how prepare would change AFM documents",
		Long: `Diff runs the prepare pipeline (without validation) and prints a
unified diff between the input documents and the prepared ones. Both
sides are serialized the same way, so formatting differences in the
input file do not show up.

Exit codes:
  0  Success (with or without differences)
  1  Error, or differences found when --exit-code is set
  2  Invalid arguments`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "", "serialization to diff: json, yaml (default: from config)")
	f.BoolVar(&opts.exitCode, "exit-code", false, "exit with code 1 when there are differences")

	registerPipelineFlags(cmd, &opts.pipelineOptions)

	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, path string, opts *diffOptions) error {
	cfg := config.FromContext(ctx)

	res, err := runPipeline(ctx, path, &opts.pipelineOptions, previewStages)
	if err != nil {
		return err
	}

	format := opts.format
	if format == "" {
		format = cfg.OutputFormat
	}

	// JSON holds a single document, so multi-document files are compared
	// as YAML streams.
	if format == config.OutputFormatJSON && len(res.Inputs) > 1 {
		format = config.OutputFormatYAML
	}

	before, err := renderDocuments(res.Inputs, format)
	if err != nil {
		return err
	}

	after, err := renderDocuments(res.Outputs, format)
	if err != nil {
		return err
	}

	diffOpts := plan.DefaultDiffOptions()
	diffOpts.OldLabel = path
	diffOpts.NewLabel = path + " (prepared)"

	result, err := plan.ComputeDiff(string(before), string(after), diffOpts)
	if err != nil {
		return fmt.Errorf("computing diff: %w", err)
	}

	plan.WriteDiff(cmd.OutOrStdout(), result, !cfg.NoColor)

	if opts.exitCode && result.HasDifferences() {
		return &ExitError{Code: exitError, Err: errDifferences}
	}

	return nil
}
