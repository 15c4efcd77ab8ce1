package afm

import (
	"errors"
	"fmt"
	"time"
)

// isoDate is the layout of absolute date filter bounds.
const isoDate = "2006-01-02"

// ValidationError describes one structural problem in an AFM.
type ValidationError struct {
	// Path locates the offending value, e.g. "measures[1].definition.measure.item".
	Path string
	// Message explains the problem.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate checks a for structural problems the platform would reject and
// returns all of them joined, or nil.
func Validate(a AFM) error {
	var errs []error

	add := func(path, format string, args ...any) {
		errs = append(errs, &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	seen := make(map[string]string)

	checkLocalID := func(path, id string) {
		if id == "" {
			add(path+".localIdentifier", "must not be empty")
			return
		}

		if prev, ok := seen[id]; ok {
			add(path+".localIdentifier", "duplicate local identifier %q (also used by %s)", id, prev)
			return
		}

		seen[id] = path
	}

	for i, attr := range a.Attributes {
		path := fmt.Sprintf("attributes[%d]", i)
		checkLocalID(path, attr.LocalIdentifier)
		checkQualifier(path+".displayForm", attr.DisplayForm, add)
	}

	for i, m := range a.Measures {
		path := fmt.Sprintf("measures[%d]", i)
		checkLocalID(path, m.LocalIdentifier)
		checkQualifier(path+".definition.measure.item", m.Definition.Measure.Item, add)
		checkFilters(path+".definition.measure.filters", m.Filters(), add)
	}

	checkFilters("filters", a.Filters, add)

	return errors.Join(errs...)
}

type addFunc func(path, format string, args ...any)

func checkQualifier(path string, q ObjQualifier, add addFunc) {
	switch {
	case q.Identifier == "" && q.URI == "":
		add(path, "one of identifier or uri is required")
	case q.Identifier != "" && q.URI != "":
		add(path, "identifier and uri are mutually exclusive")
	}
}

func checkFilters(path string, fs Filters, add addFunc) {
	for i, f := range fs {
		p := fmt.Sprintf("%s[%d]", path, i)

		switch v := f.(type) {
		case RelativeDateFilter:
			checkQualifier(p+".dataSet", v.DataSet, add)

			if v.Granularity == "" {
				add(p+".granularity", "must not be empty")
			}

			if v.From > v.To {
				add(p, "from (%d) is after to (%d)", v.From, v.To)
			}
		case AbsoluteDateFilter:
			checkQualifier(p+".dataSet", v.DataSet, add)
			checkAbsoluteRange(p, v, add)
		case PositiveAttributeFilter:
			checkQualifier(p+".displayForm", v.DisplayForm, add)
		case NegativeAttributeFilter:
			checkQualifier(p+".displayForm", v.DisplayForm, add)
		default:
			add(p, "unknown filter variant %T", f)
		}
	}
}

// checkAbsoluteRange requires both bounds and, when both are ISO dates,
// from <= to. Other bound formats are left to the platform.
func checkAbsoluteRange(path string, f AbsoluteDateFilter, add addFunc) {
	if f.From == "" {
		add(path+".from", "must not be empty")
	}

	if f.To == "" {
		add(path+".to", "must not be empty")
	}

	from, errFrom := time.Parse(isoDate, f.From)
	to, errTo := time.Parse(isoDate, f.To)

	if errFrom == nil && errTo == nil && from.After(to) {
		add(path, "from (%s) is after to (%s)", f.From, f.To)
	}
}
