package plan

import (
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffResult holds a unified diff between an input document and its
// prepared form.
type DiffResult struct {
	Unified  string
	Hunks    []string
	Added    int
	Removed  int
	OldLabel string
	NewLabel string
}

// HasDifferences reports whether the documents differ.
func (r *DiffResult) HasDifferences() bool {
	return r.Unified != ""
}

// DiffOptions configures diff computation.
type DiffOptions struct {
	OldLabel string
	NewLabel string
	Context  int
}

// DefaultDiffOptions returns the labels and context used by the diff command.
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{
		OldLabel: "input",
		NewLabel: "prepared",
		Context:  3,
	}
}

// ComputeDiff computes a unified diff between two serialized documents.
func ComputeDiff(oldDoc, newDoc string, opts DiffOptions) (*DiffResult, error) {
	diff := difflib.UnifiedDiff{
		A:        splitLines(oldDoc),
		B:        splitLines(newDoc),
		FromFile: opts.OldLabel,
		ToFile:   opts.NewLabel,
		Context:  opts.Context,
	}

	unified, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	result := &DiffResult{
		Unified:  unified,
		OldLabel: opts.OldLabel,
		NewLabel: opts.NewLabel,
	}

	if unified == "" {
		return result, nil
	}

	result.Hunks = extractHunks(unified)

	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "--- "), strings.HasPrefix(line, "+++ "):
		case strings.HasPrefix(line, "+"):
			result.Added++
		case strings.HasPrefix(line, "-"):
			result.Removed++
		}
	}

	return result, nil
}

// extractHunks splits unified diff output into hunks, dropping the
// file header.
func extractHunks(unified string) []string {
	var (
		hunks   []string
		current strings.Builder
	)

	for _, line := range strings.Split(strings.TrimSuffix(unified, "\n"), "\n") {
		if strings.HasPrefix(line, "@@") && current.Len() > 0 {
			hunks = append(hunks, current.String())
			current.Reset()
		}

		if current.Len() == 0 && !strings.HasPrefix(line, "@@") {
			continue
		}

		current.WriteString(line)
		current.WriteString("\n")
	}

	if current.Len() > 0 {
		hunks = append(hunks, current.String())
	}

	return hunks
}

// WriteDiff writes a formatted diff to w with optional ANSI colors.
func WriteDiff(w io.Writer, result *DiffResult, color bool) {
	if !result.HasDifferences() {
		_, _ = fmt.Fprintf(w, "No differences: %s is already prepared.\n", result.OldLabel)
		return
	}

	for _, line := range strings.Split(strings.TrimSuffix(result.Unified, "\n"), "\n") {
		if color {
			writeColorLine(w, line)
		} else {
			_, _ = fmt.Fprintln(w, line)
		}
	}

	_, _ = fmt.Fprintf(w, "\n%d lines added, %d lines removed\n", result.Added, result.Removed)
}

func writeColorLine(w io.Writer, line string) {
	const (
		red   = "\033[31m"
		green = "\033[32m"
		cyan  = "\033[36m"
		bold  = "\033[1m"
		reset = "\033[0m"
	)

	var prefix string

	switch {
	case strings.HasPrefix(line, "--- "), strings.HasPrefix(line, "+++ "):
		prefix = bold
	case strings.HasPrefix(line, "@@"):
		prefix = cyan
	case strings.HasPrefix(line, "-"):
		prefix = red
	case strings.HasPrefix(line, "+"):
		prefix = green
	default:
		_, _ = fmt.Fprintln(w, line)
		return
	}

	_, _ = fmt.Fprintf(w, "%s%s%s\n", prefix, line, reset)
}

// splitLines splits s into lines that keep their trailing newline, which
// is the form difflib expects.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}

	return strings.SplitAfter(s, "\n")
}
