package afm

import (
	"fmt"
	"strings"
)

// Date granularities understood by relative date filters.
const (
	GranularityYear          = "GDC.time.year"
	GranularityQuarter       = "GDC.time.quarter"
	GranularityMonth         = "GDC.time.month"
	GranularityWeek          = "GDC.time.week_us"
	GranularityDate          = "GDC.time.date"
	GranularityDayOfWeek     = "GDC.time.day_in_week"
	GranularityDayOfYear     = "GDC.time.day_in_year"
	GranularityMonthOfYear   = "GDC.time.month_in_year"
	GranularityQuarterOfYear = "GDC.time.quarter_in_year"
	GranularityWeekOfYear    = "GDC.time.week_in_year"
)

// ObjQualifier references platform metadata either by identifier or by URI.
// Exactly one of the two is expected to be set.
type ObjQualifier struct {
	Identifier string `json:"identifier,omitempty"`
	URI        string `json:"uri,omitempty"`
}

// String returns whichever reference is set, preferring the identifier.
func (q ObjQualifier) String() string {
	if q.Identifier != "" {
		return q.Identifier
	}

	return q.URI
}

// FilterKind names a filter variant. The value equals the JSON key the
// variant is wrapped in.
type FilterKind string

// Known filter kinds.
const (
	KindRelativeDate      FilterKind = "relativeDateFilter"
	KindAbsoluteDate      FilterKind = "absoluteDateFilter"
	KindPositiveAttribute FilterKind = "positiveAttributeFilter"
	KindNegativeAttribute FilterKind = "negativeAttributeFilter"
)

// Filter is implemented by the four AFM filter variants. The set is closed:
// use a type switch on [RelativeDateFilter], [AbsoluteDateFilter],
// [PositiveAttributeFilter] and [NegativeAttributeFilter].
type Filter interface {
	// Kind returns the variant name.
	Kind() FilterKind

	// filterMarker prevents implementations outside this package.
	filterMarker()
}

// RelativeDateFilter restricts a date dataset to a window relative to today,
// expressed in granularity units (0 is the current period, -1 the previous).
type RelativeDateFilter struct {
	DataSet     ObjQualifier `json:"dataSet"`
	From        int          `json:"from"`
	To          int          `json:"to"`
	Granularity string       `json:"granularity"`
}

// AbsoluteDateFilter restricts a date dataset to literal bounds.
type AbsoluteDateFilter struct {
	DataSet ObjQualifier `json:"dataSet"`
	From    string       `json:"from"`
	To      string       `json:"to"`
}

// PositiveAttributeFilter keeps only the listed attribute element values.
type PositiveAttributeFilter struct {
	DisplayForm ObjQualifier `json:"displayForm"`
	In          []string     `json:"in"`
}

// NegativeAttributeFilter drops the listed attribute element values.
type NegativeAttributeFilter struct {
	DisplayForm ObjQualifier `json:"displayForm"`
	NotIn       []string     `json:"notIn"`
}

// Kind returns KindRelativeDate.
func (RelativeDateFilter) Kind() FilterKind { return KindRelativeDate }

// Kind returns KindAbsoluteDate.
func (AbsoluteDateFilter) Kind() FilterKind { return KindAbsoluteDate }

// Kind returns KindPositiveAttribute.
func (PositiveAttributeFilter) Kind() FilterKind { return KindPositiveAttribute }

// Kind returns KindNegativeAttribute.
func (NegativeAttributeFilter) Kind() FilterKind { return KindNegativeAttribute }

func (RelativeDateFilter) filterMarker()      {}
func (AbsoluteDateFilter) filterMarker()      {}
func (PositiveAttributeFilter) filterMarker() {}
func (NegativeAttributeFilter) filterMarker() {}

func (f RelativeDateFilter) String() string {
	return fmt.Sprintf("%s(%s, %s, %d..%d)", f.Kind(), f.DataSet, f.Granularity, f.From, f.To)
}

func (f AbsoluteDateFilter) String() string {
	return fmt.Sprintf("%s(%s, %s..%s)", f.Kind(), f.DataSet, f.From, f.To)
}

func (f PositiveAttributeFilter) String() string {
	return fmt.Sprintf("%s(%s in [%s])", f.Kind(), f.DisplayForm, strings.Join(f.In, ", "))
}

func (f NegativeAttributeFilter) String() string {
	return fmt.Sprintf("%s(%s notIn [%s])", f.Kind(), f.DisplayForm, strings.Join(f.NotIn, ", "))
}

// Filters is an ordered filter list with a JSON codec for the wrapped
// variant encoding ({"positiveAttributeFilter": {...}}).
type Filters []Filter

// Clone returns a deep copy of fs. A nil list stays nil.
func (fs Filters) Clone() Filters {
	if fs == nil {
		return nil
	}

	out := make(Filters, len(fs))
	for i, f := range fs {
		out[i] = cloneFilter(f)
	}

	return out
}

func cloneFilter(f Filter) Filter {
	switch v := f.(type) {
	case PositiveAttributeFilter:
		v.In = cloneStrings(v.In)
		return v
	case NegativeAttributeFilter:
		v.NotIn = cloneStrings(v.NotIn)
		return v
	default:
		return f
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}

	return append(make([]string, 0, len(s)), s...)
}

// Measure is a metric reference within an AFM.
type Measure struct {
	LocalIdentifier string            `json:"localIdentifier"`
	Definition      MeasureDefinition `json:"definition"`
	Alias           string            `json:"alias,omitempty"`
	Format          string            `json:"format,omitempty"`
}

// MeasureDefinition wraps the simple measure definition.
type MeasureDefinition struct {
	Measure SimpleMeasure `json:"measure"`
}

// SimpleMeasure points at a metric or fact and optionally scopes it with
// its own filters.
type SimpleMeasure struct {
	Item         ObjQualifier `json:"item"`
	Aggregation  string       `json:"aggregation,omitempty"`
	ComputeRatio bool         `json:"computeRatio,omitempty"`
	Filters      Filters      `json:"filters,omitzero"`
}

// Filters returns the measure's own filter list.
func (m Measure) Filters() Filters {
	return m.Definition.Measure.Filters
}

// Attribute is an attribute slicing the result.
type Attribute struct {
	LocalIdentifier string       `json:"localIdentifier"`
	DisplayForm     ObjQualifier `json:"displayForm"`
	Alias           string       `json:"alias,omitempty"`
}

// AFM is the AnalyticalForm Model.
type AFM struct {
	Attributes []Attribute `json:"attributes,omitzero"`
	Measures   []Measure   `json:"measures,omitzero"`
	Filters    Filters     `json:"filters,omitzero"`
}

// Clone returns a deep copy of a. Absent (nil) lists stay absent.
func (a AFM) Clone() AFM {
	out := AFM{Filters: a.Filters.Clone()}

	if a.Attributes != nil {
		out.Attributes = append(make([]Attribute, 0, len(a.Attributes)), a.Attributes...)
	}

	if a.Measures != nil {
		out.Measures = make([]Measure, len(a.Measures))
		for i, m := range a.Measures {
			m.Definition.Measure.Filters = m.Definition.Measure.Filters.Clone()
			out.Measures[i] = m
		}
	}

	return out
}
