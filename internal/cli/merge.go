package cli

import (
	"github.com/spf13/cobra"
)

type mergeOptions struct {
	pipelineOptions
	outputOptions
}

func newMergeCommand() *cobra.Command {
	opts := &mergeOptions{}

	cmd := &cobra.Command{
		Use:   "merge <file>",
		Short: "Append user filters to the top-level filters of each AFM",
		Long: `Merge appends filters from --filters and any --preset to the
top-level filter list of every AFM in the file. Existing filters come
first, merged filters follow in the order given. No de-duplication is
performed.

Attribute filters without values are dropped before merging unless
--keep-empty is set or drop-empty is disabled in the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			res, err := runPipeline(ctx, args[0], &opts.pipelineOptions, mergeStages)
			if err != nil {
				return err
			}

			return writeDocuments(ctx, cmd.OutOrStdout(), res.Outputs, &opts.outputOptions)
		},
	}

	registerFilterFlags(cmd, &opts.pipelineOptions)
	registerOutputFlags(cmd, &opts.outputOptions)

	return cmd
}
