package yamlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"empty", "", 0},
		{"single doc", "measures: []\n", 1},
		{"json doc", `{"filters": []}`, 1},
		{"two docs", "measures: []\n---\nfilters: []\n", 2},
		{"leading separator", "---\nmeasures: []\n", 1},
		{"trailing separator", "measures: []\n---\n", 1},
		{"separator with trailing spaces", "measures: []\n---   \nfilters: []\n", 2},
		{"empty doc between separators", "measures: []\n---\n\n---\nfilters: []\n", 2},
		{"whitespace-only doc", "measures: []\n---\n   \n---\nfilters: []\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := Split([]byte(tt.data))
			assert.Len(t, docs, tt.want)
		})
	}
}

func TestSplit_RecordsStartLine(t *testing.T) {
	data := []byte("measures: []\n---\nfilters: []\n\n---\n# comment\nattributes: []\n")

	docs := Split(data)
	require.Len(t, docs, 3)

	assert.Equal(t, 1, docs[0].Line)
	assert.Equal(t, "measures: []\n", string(docs[0].Data))

	// The part after a separator begins with the newline that ends the "---" line.
	assert.Equal(t, 2, docs[1].Line)
	assert.Contains(t, string(docs[1].Data), "filters: []")

	assert.Equal(t, 5, docs[2].Line)
	assert.Contains(t, string(docs[2].Data), "attributes: []")
}

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, Split(nil))
	assert.Empty(t, Split([]byte("---\n---\n")))
}
