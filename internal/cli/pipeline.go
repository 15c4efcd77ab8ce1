package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pbenes/gooddata-data-layer/internal/config"
	"github.com/pbenes/gooddata-data-layer/internal/document"
	"github.com/pbenes/gooddata-data-layer/internal/logging"
	"github.com/pbenes/gooddata-data-layer/internal/plan"
	"github.com/pbenes/gooddata-data-layer/pkg/afm"
)

// stages selects the pipeline steps a command runs.
type stages struct {
	merge        bool
	redistribute bool
	validate     bool
}

var (
	mergeStages   = stages{merge: true}
	prepareStages = stages{merge: true, redistribute: true, validate: true}
	previewStages = stages{merge: true, redistribute: true}
)

// pipelineResult holds the documents before and after the pipeline ran.
type pipelineResult struct {
	Inputs  []*document.Document
	Outputs []*document.Document
	Plans   []*plan.PlanResult
}

// filterChanges sums the added and removed filters over all plans.
func (r *pipelineResult) filterChanges() (added, removed int) {
	for _, p := range r.Plans {
		added += p.Count(plan.ChangeAdded)
		removed += p.Count(plan.ChangeRemoved)
	}

	return added, removed
}

// runPipeline loads every AFM document in path and applies the selected
// stages to each. This is the shared core of merge, redistribute, prepare,
// diff, plan and watch.
func runPipeline(ctx context.Context, path string, opts *pipelineOptions, st stages) (*pipelineResult, error) {
	logger := logging.FromContext(ctx)

	logger.Debug("loading documents", slog.String("path", path))

	docs, err := document.Load(path)
	if err != nil {
		return nil, &ExitError{Code: exitError, Err: fmt.Errorf("loading documents: %w", err)}
	}

	var userFilters afm.Filters

	if st.merge {
		userFilters, err = collectUserFilters(ctx, opts)
		if err != nil {
			return nil, err
		}
	}

	redistribute := st.redistribute && !opts.noRedistribute

	result := &pipelineResult{Inputs: docs}

	var problems []error

	for _, doc := range docs {
		dlog := logging.ForDocument(logger, doc.Source, doc.Index)
		a := doc.AFM

		if st.merge {
			a = afm.MergeFilters(a, userFilters)
			dlog.Debug("merged user filters",
				slog.Int("merged", len(userFilters)),
				slog.Int("filters", len(a.Filters)),
			)
		}

		if redistribute {
			if afm.HasMeasureDateFilter(a) {
				dlog.Debug("redistributing global date filters",
					slog.Int("dateFilters", len(afm.GlobalDateFilters(a))),
					slog.Int("measures", len(a.Measures)),
				)
			}

			a = afm.HandleMeasureDateFilter(a)
		}

		if st.validate {
			if vErr := afm.Validate(a); vErr != nil {
				problems = append(problems, fmt.Errorf("%s: %w", doc.Name(), vErr))
			}
		}

		result.Outputs = append(result.Outputs, doc.WithAFM(a))
		result.Plans = append(result.Plans, plan.BuildPlan(doc.Name(), doc.AFM, a))
	}

	if len(problems) > 0 {
		return nil, &ExitError{Code: exitValidation, Err: errors.Join(problems...)}
	}

	logger.Debug("pipeline finished", slog.Int("documents", len(docs)))

	return result, nil
}

// collectUserFilters gathers the filters from --filters and every --preset,
// in that order, and drops those without values unless empty filters are
// kept.
func collectUserFilters(ctx context.Context, opts *pipelineOptions) (afm.Filters, error) {
	logger := logging.FromContext(ctx)
	cfg := config.FromContext(ctx)

	var filters afm.Filters

	if opts.filtersFile != "" {
		loaded, err := document.LoadFilters(opts.filtersFile)
		if err != nil {
			return nil, &ExitError{Code: exitError, Err: err}
		}

		filters = append(filters, loaded...)
	}

	for _, name := range opts.presets {
		preset, err := cfg.Extensions.Preset(name)
		if err != nil {
			return nil, &ExitError{Code: exitUsage, Err: fmt.Errorf("--preset: %w", err)}
		}

		filters = append(filters, preset...)
	}

	if !cfg.DropEmpty || opts.keepEmpty {
		return filters, nil
	}

	kept := afm.RemoveEmptyFilters(filters)
	if dropped := len(filters) - len(kept); dropped > 0 {
		logger.Info("dropped user filters without values", slog.Int("dropped", dropped))
	}

	return kept, nil
}
