package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pbenes/gooddata-data-layer/internal/logging"
)

type prepareOptions struct {
	pipelineOptions
	outputOptions
}

func newPrepareCommand() *cobra.Command {
	opts := &prepareOptions{}

	cmd := &cobra.Command{
		Use:   "prepare <file>",
		Short: "Merge user filters, redistribute date filters and validate",
		Long: `Prepare runs the full pipeline on every AFM in the file:

  1. drop user filters without values (unless --keep-empty)
  2. append the user filters to the top-level filter list
  3. redistribute global date filters (unless --no-redistribute)
  4. validate the result

Exit codes:
  0  Success
  1  Error
  2  Invalid arguments or config
  7  The prepared AFM is invalid`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			res, err := runPipeline(ctx, args[0], &opts.pipelineOptions, prepareStages)
			if err != nil {
				return err
			}

			added, removed := res.filterChanges()
			logging.FromContext(ctx).Debug("prepared",
				slog.Int("documents", len(res.Outputs)),
				slog.Int("filtersAdded", added),
				slog.Int("filtersRemoved", removed),
			)

			return writeDocuments(ctx, cmd.OutOrStdout(), res.Outputs, &opts.outputOptions)
		},
	}

	registerPipelineFlags(cmd, &opts.pipelineOptions)
	registerOutputFlags(cmd, &opts.outputOptions)

	return cmd
}
