// Package watch re-runs AFM preparation whenever one of its input files
// changes. Events are debounced so that the several events of one editor
// save result in a single run.
package watch
