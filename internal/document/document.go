// Package document reads and writes the files afmtool operates on. A file
// holds one or more documents, each either a bare AFM or an execution
// envelope ({"execution": {"afm": ..., "resultSpec": ...}}), in JSON or YAML.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/pbenes/gooddata-data-layer/internal/maputil"
	"github.com/pbenes/gooddata-data-layer/internal/yamlutil"
	"github.com/pbenes/gooddata-data-layer/pkg/afm"
)

// Shape identifies how the AFM is wrapped.
type Shape int

const (
	// ShapeAFM is a bare AFM object.
	ShapeAFM Shape = iota
	// ShapeExecution is an execution request envelope.
	ShapeExecution
)

// String returns the shape name.
func (s Shape) String() string {
	if s == ShapeExecution {
		return "execution"
	}

	return "afm"
}

// ErrEmptyDocument is returned for a document without content.
var ErrEmptyDocument = errors.New("empty document")

// Document is one decoded AFM document.
type Document struct {
	Shape Shape
	AFM   afm.AFM

	// ResultSpec is the untyped resultSpec of an execution envelope.
	// Always nil for ShapeAFM.
	ResultSpec map[string]interface{}

	// Source, Index and Line locate the document; Index is 0-based.
	Source string
	Index  int
	Line   int
}

// envelope mirrors the execution request body.
type envelope struct {
	Execution *execution `json:"execution"`
}

type execution struct {
	AFM        afm.AFM                `json:"afm"`
	ResultSpec map[string]interface{} `json:"resultSpec,omitempty"`
}

// Decode parses a single JSON or YAML document.
func Decode(data []byte) (*Document, error) {
	shape, err := detectShape(data)
	if err != nil {
		return nil, err
	}

	switch shape {
	case ShapeExecution:
		var env envelope
		if err := unmarshalStrict(data, &env); err != nil {
			return nil, fmt.Errorf("decoding execution: %w", err)
		}

		return &Document{Shape: ShapeExecution, AFM: env.Execution.AFM, ResultSpec: env.Execution.ResultSpec}, nil
	default:
		var a afm.AFM
		if err := unmarshalStrict(data, &a); err != nil {
			return nil, fmt.Errorf("decoding afm: %w", err)
		}

		return &Document{Shape: ShapeAFM, AFM: a}, nil
	}
}

// isJSON reports whether data looks like a JSON object or array. JSON input
// bypasses the YAML parsers, which reject tab indentation.
func isJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)

	return bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))
}

// unmarshalStrict decodes data into v, rejecting unknown fields.
func unmarshalStrict(data []byte, v interface{}) error {
	if isJSON(data) {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()

		return dec.Decode(v)
	}

	return sigsyaml.UnmarshalStrict(data, v)
}

// detectShape peeks at the top-level keys without decoding the AFM.
func detectShape(data []byte) (Shape, error) {
	if isJSON(data) {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			return ShapeAFM, fmt.Errorf("parsing document: %w", err)
		}

		exec, ok := probe["execution"]

		return classify(probe == nil, maputil.SortedKeys(probe), ok, ok && bytes.HasPrefix(bytes.TrimSpace(exec), []byte("{")), 0)
	}

	var probe map[string]yaml.Node
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return ShapeAFM, fmt.Errorf("parsing document: %w", err)
	}

	exec, ok := probe["execution"]

	return classify(probe == nil, maputil.SortedKeys(probe), ok, exec.Kind == yaml.MappingNode, exec.Line)
}

// classify decides the shape from the probed top-level keys. A nil probe
// (null or comment-only document) is empty; {} is a valid, empty AFM.
func classify(empty bool, keys []string, hasExecution, executionIsObject bool, line int) (Shape, error) {
	switch {
	case empty:
		return ShapeAFM, ErrEmptyDocument
	case !hasExecution:
		return ShapeAFM, nil
	case len(keys) > 1:
		return ShapeAFM, fmt.Errorf("execution envelope has unexpected keys: %s", strings.Join(keys, ", "))
	case !executionIsObject:
		if line > 0 {
			return ShapeAFM, fmt.Errorf("execution must be an object (line %d)", line)
		}

		return ShapeAFM, errors.New("execution must be an object")
	default:
		return ShapeExecution, nil
	}
}

// DecodeAll parses every document of a JSON file or multi-document YAML
// stream. source is used for error messages and recorded on each document.
func DecodeAll(data []byte, source string) ([]*Document, error) {
	parts := yamlutil.Split(data)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%s: %w", source, ErrEmptyDocument)
	}

	docs := make([]*Document, 0, len(parts))

	for i, part := range parts {
		doc, err := Decode(part.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: document %d (line %d): %w", source, i, part.Line, err)
		}

		doc.Source = source
		doc.Index = i
		doc.Line = part.Line
		docs = append(docs, doc)
	}

	return docs, nil
}

// Load reads path and decodes all documents in it.
func Load(path string) ([]*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified input file
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return DecodeAll(data, path)
}

// LoadFilters reads a standalone filter list (the AFM filters array shape)
// from a JSON or YAML file.
func LoadFilters(path string) (afm.Filters, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified input file
	if err != nil {
		return nil, fmt.Errorf("reading filters file: %w", err)
	}

	var fs afm.Filters

	if isJSON(data) {
		err = json.Unmarshal(data, &fs)
	} else {
		err = sigsyaml.Unmarshal(data, &fs)
	}

	if err != nil {
		return nil, fmt.Errorf("decoding filters file %s: %w", path, err)
	}

	if fs == nil {
		fs = afm.Filters{}
	}

	return fs, nil
}

// WithAFM returns a copy of d carrying a. The resultSpec is deep-copied.
func (d *Document) WithAFM(a afm.AFM) *Document {
	out := *d
	out.AFM = a
	out.ResultSpec = maputil.DeepCopyMap(d.ResultSpec)

	return &out
}

// Name returns a short human-readable location, e.g. "report.yaml#1".
func (d *Document) Name() string {
	if d.Source == "" {
		return fmt.Sprintf("#%d", d.Index)
	}

	return fmt.Sprintf("%s#%d", d.Source, d.Index)
}

// Map renders the document in its original shape as a generic map, ready
// for the output serializers.
func (d *Document) Map() (map[string]interface{}, error) {
	var v interface{} = d.AFM

	if d.Shape == ShapeExecution {
		v = envelope{Execution: &execution{AFM: d.AFM, ResultSpec: maputil.DeepCopyMap(d.ResultSpec)}}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", d.Shape, err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("re-reading %s: %w", d.Shape, err)
	}

	return m, nil
}
