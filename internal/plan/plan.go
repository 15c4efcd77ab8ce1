// Package plan describes what the preparation pipeline changed in an AFM,
// both as a structured filter change list and as a unified text diff.
package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pbenes/gooddata-data-layer/pkg/afm"
)

// ChangeType represents the type of change detected.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
)

// ScopeGlobal is the scope of the AFM's top-level filter list.
const ScopeGlobal = "filters"

// Change is one filter that appeared in or disappeared from a filter list.
type Change struct {
	Type ChangeType `json:"type"`
	// Scope is ScopeGlobal or "measure <localIdentifier>".
	Scope  string `json:"scope"`
	Filter string `json:"filter"`
	Date   bool   `json:"date"`
}

// PlanResult holds the changes for one document.
type PlanResult struct {
	Name    string   `json:"name"`
	Changes []Change `json:"changes"`
}

// MeasureScope returns the change scope for a measure.
func MeasureScope(localIdentifier string) string {
	return "measure " + localIdentifier
}

// BuildPlan compares the filter lists of before and after. Measures are
// matched by local identifier; measures present on one side only are
// reported with all their filters.
func BuildPlan(name string, before, after afm.AFM) *PlanResult {
	p := &PlanResult{Name: name, Changes: []Change{}}

	p.Changes = append(p.Changes, compareFilters(ScopeGlobal, before.Filters, after.Filters)...)

	oldMeasures := make(map[string]afm.Filters, len(before.Measures))
	for _, m := range before.Measures {
		oldMeasures[m.LocalIdentifier] = m.Filters()
	}

	seen := make(map[string]bool, len(after.Measures))

	for _, m := range after.Measures {
		seen[m.LocalIdentifier] = true
		p.Changes = append(p.Changes,
			compareFilters(MeasureScope(m.LocalIdentifier), oldMeasures[m.LocalIdentifier], m.Filters())...)
	}

	for _, m := range before.Measures {
		if !seen[m.LocalIdentifier] {
			p.Changes = append(p.Changes, compareFilters(MeasureScope(m.LocalIdentifier), m.Filters(), nil)...)
		}
	}

	return p
}

// compareFilters diffs two filter lists as multisets keyed by their string
// form. Removals are listed before additions, each in list order.
func compareFilters(scope string, old, new afm.Filters) []Change {
	var changes []Change

	changes = append(changes, missingFrom(old, new, ChangeRemoved, scope)...)
	changes = append(changes, missingFrom(new, old, ChangeAdded, scope)...)

	return changes
}

// missingFrom returns a change of type t for every filter of from without a
// matching occurrence in other.
func missingFrom(from, other afm.Filters, t ChangeType, scope string) []Change {
	available := make(map[string]int, len(other))
	for _, f := range other {
		available[describe(f)]++
	}

	var changes []Change

	for _, f := range from {
		key := describe(f)
		if available[key] > 0 {
			available[key]--
			continue
		}

		changes = append(changes, Change{Type: t, Scope: scope, Filter: key, Date: afm.IsDateFilter(f)})
	}

	return changes
}

func describe(f afm.Filter) string {
	if s, ok := f.(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprintf("%v", f)
}

// HasChanges reports whether any filter changed.
func (p *PlanResult) HasChanges() bool {
	return len(p.Changes) > 0
}

// Count returns the number of changes of the given type.
func (p *PlanResult) Count(t ChangeType) int {
	n := 0

	for _, c := range p.Changes {
		if c.Type == t {
			n++
		}
	}

	return n
}

// FormatPlan writes a human-readable plan to the given writer.
func FormatPlan(w io.Writer, p *PlanResult) {
	fmt.Fprintf(w, "Plan: %s\n", p.Name)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	if !p.HasChanges() {
		fmt.Fprintln(w, "\nNo filter changes.")
		fmt.Fprintln(w)

		return
	}

	scope := ""

	for _, c := range p.Changes {
		if c.Scope != scope {
			scope = c.Scope
			fmt.Fprintf(w, "\n%s:\n", scope)
			fmt.Fprintln(w, strings.Repeat("-", 40))
		}

		sign := "+"
		if c.Type == ChangeRemoved {
			sign = "-"
		}

		fmt.Fprintf(w, "  %s %s\n", sign, c.Filter)
	}

	fmt.Fprintf(w, "\nSummary: %s\n\n", compactSummary(p))
}

// FormatPlanJSON writes the plan as JSON.
func FormatPlanJSON(w io.Writer, p *PlanResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(p)
}

// FormatPlanCompact writes a one-line summary of the plan.
func FormatPlanCompact(w io.Writer, p *PlanResult) {
	fmt.Fprintf(w, "Plan: %s -- %s\n", p.Name, compactSummary(p))
}

func compactSummary(p *PlanResult) string {
	return fmt.Sprintf("%d filters added, %d filters removed", p.Count(ChangeAdded), p.Count(ChangeRemoved))
}
