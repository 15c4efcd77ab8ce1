package cli

import (
	"github.com/spf13/cobra"
)

func newRedistributeCommand() *cobra.Command {
	opts := &outputOptions{}

	cmd := &cobra.Command{
		Use:   "redistribute <file>",
		Short: "Move global date filters onto measures without a date filter",
		Long: `Redistribute applies the measure date filter rule to every AFM in
the file. When at least one measure carries its own date filter, each
measure without one receives the global date filters, and the global
filter list keeps only its attribute filters. AFMs where no measure has a
date filter are written unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			res, err := runPipeline(ctx, args[0], &pipelineOptions{}, stages{redistribute: true})
			if err != nil {
				return err
			}

			return writeDocuments(ctx, cmd.OutOrStdout(), res.Outputs, opts)
		},
	}

	registerOutputFlags(cmd, opts)

	return cmd
}
