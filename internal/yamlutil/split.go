// Package yamlutil provides YAML stream helpers for AFM document files.
package yamlutil

import (
	"regexp"
	"strings"
)

// docSeparator matches YAML document separators: a line containing only "---"
// optionally followed by whitespace.
var docSeparator = regexp.MustCompile(`(?m)^---\s*$`)

// Document is one document of a multi-document stream.
type Document struct {
	// Data is the raw document without the "---" separator.
	Data []byte
	// Line is the 1-based line in the stream where Data starts.
	Line int
}

// Split splits a multi-document YAML stream into its non-empty documents and
// records where each one starts, so decode errors can point at a line.
func Split(data []byte) []Document {
	text := string(data)
	seps := docSeparator.FindAllStringIndex(text, -1)

	var docs []Document

	start := 0
	for i := 0; i <= len(seps); i++ {
		end := len(text)
		if i < len(seps) {
			end = seps[i][0]
		}

		part := text[start:end]
		if strings.TrimSpace(part) != "" {
			docs = append(docs, Document{
				Data: []byte(part),
				Line: strings.Count(text[:start], "\n") + 1,
			})
		}

		if i < len(seps) {
			start = seps[i][1]
		}
	}

	return docs
}
