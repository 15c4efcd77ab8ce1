// Package afm models the AnalyticalForm Model (AFM), the declarative query
// descriptor the analytics platform executes, and provides the filter
// helpers the data layer applies before an AFM is sent for execution.
//
// All helpers are pure: they never mutate their input and return a new
// [AFM] value instead. Slices in a returned AFM are freshly allocated where
// they differ from the input and shared where they do not, so callers that
// intend to mutate a result should [AFM.Clone] it first.
//
// A nil slice field means the corresponding JSON key is absent, while an
// empty non-nil slice is encoded as [] and survives a round trip.
package afm
