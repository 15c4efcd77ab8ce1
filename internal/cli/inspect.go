package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/pbenes/gooddata-data-layer/internal/document"
	"github.com/pbenes/gooddata-data-layer/internal/logging"
	"github.com/pbenes/gooddata-data-layer/pkg/afm"
)

type inspectOptions struct {
	showMeasures bool
	showFilters  bool
	format       string
}

func newInspectCommand() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize the measures and filters of AFM documents",
		Long: `Inspect prints, for every AFM in the file, its measures with their
own filters, the global filter list and whether each filter carries any
values. It also reports whether the date filter redistribution would
change the document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.showMeasures, "show-measures", false, "show only the measure table")
	f.BoolVar(&opts.showFilters, "show-filters", false, "show only the global filter table")
	f.StringVar(&opts.format, "format", "table", "output format: table, json, yaml")

	return cmd
}

// inspectResult is the structured output of the inspect command.
type inspectResult struct {
	Documents []documentInfo `json:"documents"`
}

type documentInfo struct {
	Name                string        `json:"name"`
	Shape               string        `json:"shape"`
	Attributes          int           `json:"attributes"`
	Measures            []measureInfo `json:"measures"`
	Filters             []filterInfo  `json:"filters"`
	NeedsRedistribution bool          `json:"needsRedistribution"`
}

type measureInfo struct {
	LocalIdentifier string       `json:"localIdentifier"`
	Item            string       `json:"item"`
	HasDateFilter   bool         `json:"hasDateFilter"`
	Filters         []filterInfo `json:"filters"`
}

type filterInfo struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
	Date   bool   `json:"date"`
	Values int    `json:"values"`
	Empty  bool   `json:"empty"`
}

func runInspect(ctx context.Context, cmd *cobra.Command, path string, opts *inspectOptions) error {
	logger := logging.FromContext(ctx)

	logger.Debug("loading documents", slog.String("path", path))

	docs, err := document.Load(path)
	if err != nil {
		return &ExitError{Code: exitError, Err: fmt.Errorf("loading documents: %w", err)}
	}

	result := buildInspectResult(docs)

	w := cmd.OutOrStdout()
	showAll := !opts.showMeasures && !opts.showFilters

	switch opts.format {
	case "json":
		return renderJSON(w, result)
	case "yaml":
		return renderYAML(w, result)
	case "table":
		renderTable(w, result, showAll, opts)
		return nil
	default:
		return &ExitError{Code: exitUsage, Err: fmt.Errorf("unknown format %q: expected table, json, yaml", opts.format)}
	}
}

func buildInspectResult(docs []*document.Document) inspectResult {
	result := inspectResult{Documents: make([]documentInfo, 0, len(docs))}

	for _, doc := range docs {
		info := documentInfo{
			Name:                doc.Name(),
			Shape:               doc.Shape.String(),
			Attributes:          len(doc.AFM.Attributes),
			Measures:            make([]measureInfo, 0, len(doc.AFM.Measures)),
			Filters:             describeFilters(doc.AFM.Filters),
			NeedsRedistribution: afm.HasMeasureDateFilter(doc.AFM) && len(afm.GlobalDateFilters(doc.AFM)) > 0,
		}

		for _, m := range doc.AFM.Measures {
			filters := m.Filters()

			hasDate := false
			for _, f := range filters {
				if afm.IsDateFilter(f) {
					hasDate = true
					break
				}
			}

			info.Measures = append(info.Measures, measureInfo{
				LocalIdentifier: m.LocalIdentifier,
				Item:            m.Definition.Measure.Item.String(),
				HasDateFilter:   hasDate,
				Filters:         describeFilters(filters),
			})
		}

		result.Documents = append(result.Documents, info)
	}

	return result
}

func describeFilters(fs afm.Filters) []filterInfo {
	out := make([]filterInfo, 0, len(fs))

	for _, f := range fs {
		info := filterInfo{
			Kind:  string(f.Kind()),
			Date:  afm.IsDateFilter(f),
			Empty: !afm.IsNotEmptyFilter(f),
		}

		switch v := f.(type) {
		case afm.RelativeDateFilter:
			info.Target = v.DataSet.String()
		case afm.AbsoluteDateFilter:
			info.Target = v.DataSet.String()
		case afm.PositiveAttributeFilter:
			info.Target = v.DisplayForm.String()
			info.Values = len(v.In)
		case afm.NegativeAttributeFilter:
			info.Target = v.DisplayForm.String()
			info.Values = len(v.NotIn)
		}

		out = append(out, info)
	}

	return out
}

func renderJSON(w io.Writer, result inspectResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(result)
}

func renderYAML(w io.Writer, result inspectResult) error {
	data, err := sigsyaml.Marshal(result)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

func renderTable(w io.Writer, result inspectResult, showAll bool, opts *inspectOptions) {
	for _, doc := range result.Documents {
		printDocumentInfo(w, doc)

		if showAll || opts.showMeasures {
			printMeasureTable(w, doc)
		}

		if showAll || opts.showFilters {
			printFilterTable(w, doc)
		}
	}
}

func printDocumentInfo(w io.Writer, doc documentInfo) {
	_, _ = fmt.Fprintf(w, "\n=== %s (%s) ===\n", doc.Name, doc.Shape)
	_, _ = fmt.Fprintf(w, "Attributes:     %d\n", doc.Attributes)

	redistribution := "not needed"
	if doc.NeedsRedistribution {
		redistribution = "needed"
	}

	_, _ = fmt.Fprintf(w, "Redistribution: %s\n", redistribution)
}

func printMeasureTable(w io.Writer, doc documentInfo) {
	_, _ = fmt.Fprintf(w, "\n--- Measures (%d) ---\n", len(doc.Measures))

	if len(doc.Measures) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "LOCAL ID\tITEM\tDATE FILTER\tFILTERS")

	for _, m := range doc.Measures {
		kinds := make([]string, 0, len(m.Filters))
		for _, f := range m.Filters {
			kinds = append(kinds, f.Kind)
		}

		filters := strings.Join(kinds, ", ")
		if filters == "" {
			filters = "-"
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.LocalIdentifier, m.Item, yesNo(m.HasDateFilter), filters)
	}

	_ = tw.Flush()
}

func printFilterTable(w io.Writer, doc documentInfo) {
	_, _ = fmt.Fprintf(w, "\n--- Global Filters (%d) ---\n", len(doc.Filters))

	if len(doc.Filters) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KIND\tTARGET\tVALUES\tEMPTY")

	for _, f := range doc.Filters {
		values := "-"
		if !f.Date {
			values = fmt.Sprintf("%d", f.Values)
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Kind, f.Target, values, yesNo(f.Empty))
	}

	_ = tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
