package afm

import "fmt"

// IsNotEmptyFilter reports whether f constrains anything. Attribute filters
// with an empty value set are no-ops; date filters always constrain.
// It panics on a nil filter.
func IsNotEmptyFilter(f Filter) bool {
	switch v := f.(type) {
	case PositiveAttributeFilter:
		return len(v.In) > 0
	case NegativeAttributeFilter:
		return len(v.NotIn) > 0
	case RelativeDateFilter, AbsoluteDateFilter:
		return true
	default:
		panic(fmt.Sprintf("afm: unknown filter variant %T", f))
	}
}

// IsDateFilter reports whether f is a relative or absolute date filter.
func IsDateFilter(f Filter) bool {
	switch f.(type) {
	case RelativeDateFilter, AbsoluteDateFilter:
		return true
	default:
		return false
	}
}

// IsAttributeFilter reports whether f is a positive or negative attribute filter.
func IsAttributeFilter(f Filter) bool {
	switch f.(type) {
	case PositiveAttributeFilter, NegativeAttributeFilter:
		return true
	default:
		return false
	}
}

// RemoveEmptyFilters returns the filters of fs that pass IsNotEmptyFilter,
// in their original order.
func RemoveEmptyFilters(fs Filters) Filters {
	out := make(Filters, 0, len(fs))

	for _, f := range fs {
		if IsNotEmptyFilter(f) {
			out = append(out, f)
		}
	}

	return out
}

// MergeFilters returns a copy of a whose filter list is a's filters followed
// by filters. The result list is never nil.
func MergeFilters(a AFM, filters Filters) AFM {
	merged := make(Filters, 0, len(a.Filters)+len(filters))
	merged = append(merged, a.Filters...)
	merged = append(merged, filters...)

	a.Filters = merged

	return a
}

// HasMeasureDateFilter reports whether any measure of a carries its own
// date filter.
func HasMeasureDateFilter(a AFM) bool {
	for _, m := range a.Measures {
		if containsDateFilter(m.Filters()) {
			return true
		}
	}

	return false
}

// GlobalDateFilters returns the date filters of a's top-level filter list.
func GlobalDateFilters(a AFM) Filters {
	var out Filters

	for _, f := range a.Filters {
		if IsDateFilter(f) {
			out = append(out, f)
		}
	}

	return out
}

// HandleMeasureDateFilter moves global date filters onto measures once any
// measure carries a date filter of its own. Measures without a date filter
// get every global date filter appended; measures with one keep their
// filters. Global date filters are then removed from the top-level list.
//
// An AFM without measures, or in which no measure has a date filter, is
// returned unchanged.
func HandleMeasureDateFilter(a AFM) AFM {
	if len(a.Measures) == 0 || !HasMeasureDateFilter(a) {
		return a
	}

	global := GlobalDateFilters(a)

	measures := make([]Measure, len(a.Measures))

	for i, m := range a.Measures {
		own := m.Filters()
		if len(global) > 0 && !containsDateFilter(own) {
			filters := make(Filters, 0, len(own)+len(global))
			filters = append(filters, own...)
			filters = append(filters, global...)
			m.Definition.Measure.Filters = filters
		}

		measures[i] = m
	}

	a.Measures = measures
	a.Filters = withoutDateFilters(a.Filters)

	return a
}

func containsDateFilter(fs Filters) bool {
	for _, f := range fs {
		if IsDateFilter(f) {
			return true
		}
	}

	return false
}

// withoutDateFilters keeps non-date filters. A nil list stays nil.
func withoutDateFilters(fs Filters) Filters {
	if fs == nil {
		return nil
	}

	out := make(Filters, 0, len(fs))

	for _, f := range fs {
		if !IsDateFilter(f) {
			out = append(out, f)
		}
	}

	return out
}
