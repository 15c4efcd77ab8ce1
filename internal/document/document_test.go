package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbenes/gooddata-data-layer/pkg/afm"
)

const bareYAML = `
measures:
  - localIdentifier: m1
    definition:
      measure:
        item: {identifier: m1}
        filters:
          - absoluteDateFilter:
              dataSet: {identifier: d2}
              from: "1"
              to: "2"
  - localIdentifier: m2
    definition:
      measure:
        item: {identifier: m2}
filters:
  - absoluteDateFilter:
      dataSet: {identifier: d1}
      from: "1"
      to: "2"
`

const executionJSON = `{
	"execution": {
		"afm": {
			"measures": [{"localIdentifier": "m1", "definition": {"measure": {"item": {"identifier": "m1"}}}}],
			"filters": [{"positiveAttributeFilter": {"displayForm": {"identifier": "a"}, "in": []}}]
		},
		"resultSpec": {"dimensions": [{"itemIdentifiers": ["measureGroup"]}]}
	}
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

// ---------------------------------------------------------------------------
// Decode
// ---------------------------------------------------------------------------

func TestDecode_BareYAML(t *testing.T) {
	doc, err := Decode([]byte(bareYAML))
	require.NoError(t, err)

	assert.Equal(t, ShapeAFM, doc.Shape)
	assert.Nil(t, doc.ResultSpec)
	require.Len(t, doc.AFM.Measures, 2)
	assert.Equal(t, afm.Filters{
		afm.AbsoluteDateFilter{DataSet: afm.ObjQualifier{Identifier: "d1"}, From: "1", To: "2"},
	}, doc.AFM.Filters)
	assert.True(t, afm.HasMeasureDateFilter(doc.AFM))
}

func TestDecode_ExecutionJSONWithTabs(t *testing.T) {
	doc, err := Decode([]byte(executionJSON))
	require.NoError(t, err)

	assert.Equal(t, ShapeExecution, doc.Shape)
	assert.Equal(t, "execution", doc.Shape.String())
	require.Len(t, doc.AFM.Measures, 1)
	assert.Equal(t, afm.Filters{
		afm.PositiveAttributeFilter{DisplayForm: afm.ObjQualifier{Identifier: "a"}, In: []string{}},
	}, doc.AFM.Filters)
	assert.Contains(t, doc.ResultSpec, "dimensions")
}

func TestDecode_ExecutionYAML(t *testing.T) {
	data := "execution:\n  afm:\n    filters: []\n"

	doc, err := Decode([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, ShapeExecution, doc.Shape)
	require.NotNil(t, doc.AFM.Filters)
	assert.Empty(t, doc.AFM.Filters)
	assert.Nil(t, doc.ResultSpec)
}

func TestDecode_EmptyObjectIsValidAFM(t *testing.T) {
	for _, data := range []string{"{}", "{}\n"} {
		doc, err := Decode([]byte(data))
		require.NoError(t, err)
		assert.Equal(t, afm.AFM{}, doc.AFM)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"null document", "null\n", "empty document"},
		{"comment only", "# nothing here\n", "empty document"},
		{"not a mapping", "- a\n- b\n", "parsing document"},
		{"json array", `[1, 2]`, "parsing document"},
		{"unknown afm key", "measures: []\nsorts: []\n", `unknown field "sorts"`},
		{"unknown json key", `{"measurez": []}`, `unknown field "measurez"`},
		{"extra envelope key", "execution: {afm: {}}\nmeta: 1\n", "unexpected keys: execution, meta"},
		{"execution scalar", "execution: 3\n", "execution must be an object (line 1)"},
		{"execution json scalar", `{"execution": 3}`, "execution must be an object"},
		{"bad filter", "filters:\n  - rankingFilter: {}\n", "unknown filter variant"},
		{
			"misspelled in json",
			`{"filters": [{"positiveAttributeFilter": {"displayForm": {"identifier": "a"}, "inn": ["x"]}}]}`,
			`unknown field "inn"`,
		},
		{
			"misspelled in yaml",
			"filters:\n  - positiveAttributeFilter:\n      displayForm: {identifier: a}\n      inn: [x]\n",
			`unknown field "inn"`,
		},
		{
			"misspelled notIn yaml",
			"filters:\n  - negativeAttributeFilter:\n      displayForm: {identifier: a}\n      notin: [x]\n",
			`unknown field "notin"`,
		},
		{
			"misspelled from in measure json",
			`{"measures": [{"localIdentifier": "m1", "definition": {"measure": {"item": {"identifier": "m1"}, "filters": [{"absoluteDateFilter": {"dataSet": {"identifier": "d"}, "form": "a", "to": "b"}}]}}}]}`,
			`unknown field "form"`,
		},
		{
			"misspelled from in execution yaml",
			"execution:\n  afm:\n    filters:\n      - relativeDateFilter: {dataSet: {identifier: d}, form: -1, to: 0, granularity: GDC.time.year}\n",
			`unknown field "form"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// ---------------------------------------------------------------------------
// DecodeAll / Load
// ---------------------------------------------------------------------------

func TestDecodeAll_MultiDocument(t *testing.T) {
	data := []byte(bareYAML + "---\nexecution:\n  afm: {}\n  resultSpec: {sorts: []}\n")

	docs, err := DecodeAll(data, "stream.yaml")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, ShapeAFM, docs[0].Shape)
	assert.Equal(t, 0, docs[0].Index)
	assert.Equal(t, "stream.yaml#0", docs[0].Name())

	assert.Equal(t, ShapeExecution, docs[1].Shape)
	assert.Equal(t, 1, docs[1].Index)
	assert.Equal(t, "stream.yaml", docs[1].Source)
	assert.Greater(t, docs[1].Line, 1)
}

func TestDecodeAll_ReportsFailingDocument(t *testing.T) {
	data := []byte("filters: []\n---\nfilters: 7\n")

	_, err := DecodeAll(data, "bad.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml: document 1 (line 2)")
}

func TestDecodeAll_Empty(t *testing.T) {
	_, err := DecodeAll([]byte("\n---\n"), "empty.yaml")
	require.ErrorIs(t, err, ErrEmptyDocument)
}

func TestLoad(t *testing.T) {
	p := writeFile(t, "afm.json", executionJSON)

	docs, err := Load(p)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, p, docs[0].Source)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading file")
}

// ---------------------------------------------------------------------------
// LoadFilters
// ---------------------------------------------------------------------------

func TestLoadFilters(t *testing.T) {
	yamlPath := writeFile(t, "filters.yaml", "- negativeAttributeFilter:\n    displayForm: {identifier: a}\n    notIn: [x]\n")
	jsonPath := writeFile(t, "filters.json", "[\n\t{\"absoluteDateFilter\": {\"dataSet\": {\"uri\": \"/d\"}, \"from\": \"a\", \"to\": \"b\"}}\n]")

	fromYAML, err := LoadFilters(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, afm.Filters{
		afm.NegativeAttributeFilter{DisplayForm: afm.ObjQualifier{Identifier: "a"}, NotIn: []string{"x"}},
	}, fromYAML)

	fromJSON, err := LoadFilters(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, afm.Filters{
		afm.AbsoluteDateFilter{DataSet: afm.ObjQualifier{URI: "/d"}, From: "a", To: "b"},
	}, fromJSON)
}

func TestLoadFilters_EmptyFile(t *testing.T) {
	p := writeFile(t, "empty.yaml", "")

	fs, err := LoadFilters(p)
	require.NoError(t, err)
	require.NotNil(t, fs)
	assert.Empty(t, fs)
}

func TestLoadFilters_Invalid(t *testing.T) {
	p := writeFile(t, "bad.yaml", "- unknownFilter: {}\n")

	_, err := LoadFilters(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding filters file")
}

func TestLoadFilters_MisspelledKey(t *testing.T) {
	yamlPath := writeFile(t, "filters.yaml", "- positiveAttributeFilter:\n    displayForm: {identifier: a}\n    inn: [x]\n")
	jsonPath := writeFile(t, "filters.json", `[{"negativeAttributeFilter": {"displayForm": {"identifier": "a"}, "notin": ["x"]}}]`)

	_, err := LoadFilters(yamlPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "inn"`)

	_, err = LoadFilters(jsonPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "notin"`)
}

// ---------------------------------------------------------------------------
// WithAFM / Map
// ---------------------------------------------------------------------------

func TestWithAFM_CopiesResultSpec(t *testing.T) {
	doc, err := Decode([]byte(executionJSON))
	require.NoError(t, err)

	next := doc.WithAFM(afm.MergeFilters(doc.AFM, nil))
	next.ResultSpec["dimensions"] = "changed"

	assert.NotEqual(t, "changed", doc.ResultSpec["dimensions"])
	assert.Equal(t, doc.Shape, next.Shape)
}

func TestMap_PreservesShape(t *testing.T) {
	exec, err := Decode([]byte(executionJSON))
	require.NoError(t, err)

	m, err := exec.Map()
	require.NoError(t, err)
	require.Contains(t, m, "execution")

	inner := m["execution"].(map[string]interface{})
	assert.Contains(t, inner, "afm")
	assert.Contains(t, inner, "resultSpec")

	bare, err := Decode([]byte("filters: []\n"))
	require.NoError(t, err)

	m, err = bare.Map()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"filters": []interface{}{}}, m)
}
