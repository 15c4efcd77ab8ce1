package cli

import (
	"github.com/spf13/cobra"
)

// pipelineOptions holds the flags shared by every command that runs the
// preparation pipeline.
type pipelineOptions struct {
	filtersFile    string
	presets        []string
	keepEmpty      bool
	noRedistribute bool
}

// outputOptions controls where and how prepared documents are written.
type outputOptions struct {
	output string
	format string
}

// registerFilterFlags adds the user filter source flags to a cobra command.
func registerFilterFlags(cmd *cobra.Command, opts *pipelineOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.filtersFile, "filters", "", "JSON or YAML file holding a list of filters to merge")
	f.StringArrayVar(&opts.presets, "preset", nil, "merge a named filter preset from the config file (repeatable)")
	f.BoolVar(&opts.keepEmpty, "keep-empty", false, "merge attribute filters without values instead of dropping them")
}

// registerRedistributeFlags adds the date filter redistribution switch.
func registerRedistributeFlags(cmd *cobra.Command, opts *pipelineOptions) {
	cmd.Flags().BoolVar(&opts.noRedistribute, "no-redistribute", false,
		"keep global date filters in place even when a measure has its own")
}

// registerPipelineFlags registers all shared pipeline flags on a cobra command.
func registerPipelineFlags(cmd *cobra.Command, opts *pipelineOptions) {
	registerFilterFlags(cmd, opts)
	registerRedistributeFlags(cmd, opts)
}

// registerOutputFlags adds the output destination and format flags.
func registerOutputFlags(cmd *cobra.Command, opts *outputOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file path (default: stdout)")
	f.StringVar(&opts.format, "format", "", "output format: json, yaml (default: from --output extension or config)")
}
