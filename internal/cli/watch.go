package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbenes/gooddata-data-layer/internal/config"
	"github.com/pbenes/gooddata-data-layer/internal/logging"
	"github.com/pbenes/gooddata-data-layer/internal/watch"
)

type watchOptions struct {
	pipelineOptions
	outputOptions

	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-run prepare whenever the input changes",
		Long: `Watch runs prepare once and then again whenever the AFM file, the
--filters file or the config file changes. File changes are debounced
to avoid rapid re-runs. Presets are re-read from the config file on
every run.

Each run reports the number of documents and of filters added and
removed. A failing run is reported and the watcher keeps going.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args[0], opts)
		},
	}

	registerPipelineFlags(cmd, &opts.pipelineOptions)
	registerOutputFlags(cmd, &opts.outputOptions)
	cmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultOptions().Debounce, "debounce interval for file changes")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, path string, opts *watchOptions) error {
	if opts.output == "" {
		return &ExitError{Code: exitUsage, Err: fmt.Errorf("--output (-o) is required for watch mode")}
	}

	if sameFile(opts.output, path) {
		return &ExitError{Code: exitUsage, Err: fmt.Errorf("--output must differ from the input file")}
	}

	cfg := config.FromContext(ctx)

	files := []string{path}
	if opts.filtersFile != "" {
		files = append(files, opts.filtersFile)
	}

	if cfg.ConfigFile != "" {
		files = append(files, cfg.ConfigFile)
	}

	runFn := func(fnCtx context.Context) (*watch.RunResult, error) {
		runCfg := *cfg

		ext, err := config.LoadExtensions(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}

		runCfg.Extensions = ext
		fnCtx = config.NewContext(fnCtx, &runCfg)

		res, err := runPipeline(fnCtx, path, &opts.pipelineOptions, prepareStages)
		if err != nil {
			return nil, err
		}

		if err := writeDocuments(fnCtx, cmd.OutOrStdout(), res.Outputs, &opts.outputOptions); err != nil {
			return nil, err
		}

		added, removed := res.filterChanges()

		return &watch.RunResult{
			Documents:      len(res.Outputs),
			FiltersAdded:   added,
			FiltersRemoved: removed,
			OutputPath:     opts.output,
		}, nil
	}

	watchOpts := watch.Options{
		Files:    files,
		Debounce: opts.debounce,
		Logger:   logging.FromContext(ctx),
		Out:      cmd.ErrOrStderr(),
	}

	return watch.Run(ctx, watchOpts, runFn)
}

// sameFile reports whether a and b resolve to the same absolute path.
func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)

	return errA == nil && errB == nil && absA == absB
}
