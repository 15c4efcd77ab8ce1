package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbenes/gooddata-data-layer/internal/plan"
)

type planOptions struct {
	pipelineOptions

	// Output format: "table" (default), "json", "compact".
	format string
}

func newPlanCommand() *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan <file>",
		Short: "List the filters prepare would add or remove",
		Long: `Plan runs the prepare pipeline (without validation) and lists, per
document, the filters that appear in or disappear from the global filter
list and from each measure. Nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "table", "output format: table, json, compact")
	registerPipelineFlags(cmd, &opts.pipelineOptions)

	return cmd
}

func runPlan(ctx context.Context, cmd *cobra.Command, path string, opts *planOptions) error {
	switch opts.format {
	case "table", "json", "compact":
	default:
		return &ExitError{Code: exitUsage, Err: fmt.Errorf("unknown format %q: expected table, json, compact", opts.format)}
	}

	res, err := runPipeline(ctx, path, &opts.pipelineOptions, previewStages)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	for _, p := range res.Plans {
		switch opts.format {
		case "json":
			if err := plan.FormatPlanJSON(w, p); err != nil {
				return err
			}
		case "compact":
			plan.FormatPlanCompact(w, p)
		default:
			plan.FormatPlan(w, p)
		}
	}

	return nil
}
