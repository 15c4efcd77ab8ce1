package afm_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbenes/gooddata-data-layer/pkg/afm"
)

const executionAFM = `{
  "attributes": [
    {"localIdentifier": "a1", "displayForm": {"identifier": "label.region"}}
  ],
  "measures": [
    {
      "localIdentifier": "m1",
      "alias": "Revenue",
      "definition": {
        "measure": {
          "item": {"uri": "/gdc/md/project/obj/1"},
          "aggregation": "sum",
          "filters": [
            {"absoluteDateFilter": {"dataSet": {"identifier": "d2"}, "from": "2020-01-01", "to": "2020-12-31"}}
          ]
        }
      }
    },
    {"localIdentifier": "m2", "definition": {"measure": {"item": {"identifier": "m2"}}}}
  ],
  "filters": [
    {"relativeDateFilter": {"dataSet": {"identifier": "d1"}, "from": -3, "to": 0, "granularity": "GDC.time.month"}},
    {"positiveAttributeFilter": {"displayForm": {"identifier": "label.a"}, "in": ["1", "2"]}},
    {"negativeAttributeFilter": {"displayForm": {"identifier": "label.b"}, "notIn": []}}
  ]
}`

func TestUnmarshal_FullAFM(t *testing.T) {
	var got afm.AFM
	require.NoError(t, json.Unmarshal([]byte(executionAFM), &got))

	require.Len(t, got.Attributes, 1)
	assert.Equal(t, "label.region", got.Attributes[0].DisplayForm.Identifier)

	require.Len(t, got.Measures, 2)
	assert.Equal(t, "Revenue", got.Measures[0].Alias)
	assert.Equal(t, "/gdc/md/project/obj/1", got.Measures[0].Definition.Measure.Item.URI)
	assert.Equal(t, "sum", got.Measures[0].Definition.Measure.Aggregation)
	assert.Equal(t, afm.Filters{
		afm.AbsoluteDateFilter{DataSet: afm.ObjQualifier{Identifier: "d2"}, From: "2020-01-01", To: "2020-12-31"},
	}, got.Measures[0].Filters())
	assert.Nil(t, got.Measures[1].Filters())

	assert.Equal(t, afm.Filters{
		afm.RelativeDateFilter{DataSet: afm.ObjQualifier{Identifier: "d1"}, From: -3, To: 0, Granularity: afm.GranularityMonth},
		afm.PositiveAttributeFilter{DisplayForm: afm.ObjQualifier{Identifier: "label.a"}, In: []string{"1", "2"}},
		afm.NegativeAttributeFilter{DisplayForm: afm.ObjQualifier{Identifier: "label.b"}, NotIn: []string{}},
	}, got.Filters)
}

func TestMarshal_AbsentVersusEmptyFilters(t *testing.T) {
	absent, err := json.Marshal(afm.AFM{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(absent))

	empty, err := json.Marshal(afm.AFM{Filters: afm.Filters{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"filters": []}`, string(empty))
}

func TestUnmarshal_EmptyFilterListStaysNonNil(t *testing.T) {
	var got afm.AFM
	require.NoError(t, json.Unmarshal([]byte(`{"filters": []}`), &got))
	require.NotNil(t, got.Filters)
	assert.Empty(t, got.Filters)

	var none afm.AFM
	require.NoError(t, json.Unmarshal([]byte(`{"filters": null}`), &none))
	assert.Nil(t, none.Filters)
}

func TestMarshal_WrapsVariants(t *testing.T) {
	fs := afm.Filters{
		afm.PositiveAttributeFilter{DisplayForm: afm.ObjQualifier{URI: "/obj/2"}, In: []string{"x"}},
		afm.RelativeDateFilter{DataSet: afm.ObjQualifier{Identifier: "d"}, From: -1, To: -1, Granularity: afm.GranularityYear},
	}

	data, err := json.Marshal(fs)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"positiveAttributeFilter": {"displayForm": {"uri": "/obj/2"}, "in": ["x"]}},
		{"relativeDateFilter": {"dataSet": {"identifier": "d"}, "from": -1, "to": -1, "granularity": "GDC.time.year"}}
	]`, string(data))
}

func TestMarshal_NilFilterFails(t *testing.T) {
	_, err := json.Marshal(afm.Filters{nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filter 0 is nil")
}

func TestUnmarshal_RejectsUnknownVariants(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown key", `[{"rankingFilter": {}}]`, "unknown filter variant (keys: rankingFilter)"},
		{"two keys", `[{"absoluteDateFilter": {}, "relativeDateFilter": {}}]`, "keys: absoluteDateFilter, relativeDateFilter"},
		{"empty object", `[{}]`, "empty filter item"},
		{"bad body", `[{"positiveAttributeFilter": {"in": "x"}}]`, "invalid positiveAttributeFilter"},
		{"not a list", `{"filters": 1}`, "invalid filter list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fs afm.Filters
			err := json.Unmarshal([]byte(tt.data), &fs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUnmarshal_RejectsUnknownBodyKeys(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			"misspelled in",
			`[{"positiveAttributeFilter": {"displayForm": {"identifier": "a"}, "inn": ["x"]}}]`,
			`invalid positiveAttributeFilter: json: unknown field "inn"`,
		},
		{
			"misspelled notIn",
			`[{"negativeAttributeFilter": {"displayForm": {"identifier": "a"}, "notin": ["x"]}}]`,
			`invalid negativeAttributeFilter: json: unknown field "notin"`,
		},
		{
			"misspelled from",
			`[{"relativeDateFilter": {"dataSet": {"identifier": "d"}, "form": -1, "to": 0, "granularity": "GDC.time.year"}}]`,
			`invalid relativeDateFilter: json: unknown field "form"`,
		},
		{
			"absolute date extra key",
			`[{"absoluteDateFilter": {"dataSet": {"identifier": "d"}, "from": "a", "to": "b", "until": "c"}}]`,
			`invalid absoluteDateFilter: json: unknown field "until"`,
		},
		{
			"unknown qualifier key",
			`[{"positiveAttributeFilter": {"displayForm": {"ident": "a"}, "in": ["x"]}}]`,
			`unknown field "ident"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fs afm.Filters
			err := json.Unmarshal([]byte(tt.data), &fs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "filter 0")
		})
	}
}

func TestUnmarshal_UnknownFilterErrorIsTyped(t *testing.T) {
	var fs afm.Filters
	err := json.Unmarshal([]byte(`[{"measureValueFilter": {}}]`), &fs)

	var unknown *afm.UnknownFilterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"measureValueFilter"}, unknown.Keys)
}

func TestRoundTrip_HandledAFM(t *testing.T) {
	var in afm.AFM
	require.NoError(t, json.Unmarshal([]byte(executionAFM), &in))

	// m1 carries a date filter, so the relative date filter moves onto m2.
	handled := afm.HandleMeasureDateFilter(in)

	data, err := json.Marshal(handled)
	require.NoError(t, err)

	var back afm.AFM
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, handled, back)
	assert.Len(t, back.Filters, 2)
	assert.Len(t, back.Measures[1].Filters(), 1)
}

func TestObjQualifierString(t *testing.T) {
	assert.Equal(t, "x", afm.ObjQualifier{Identifier: "x", URI: "/u"}.String())
	assert.Equal(t, "/u", afm.ObjQualifier{URI: "/u"}.String())
}
