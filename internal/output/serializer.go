package output

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	sigsyaml "sigs.k8s.io/yaml"
)

// SerializeYAML converts a document map to YAML with alphabetically sorted
// keys and a trailing newline.
func SerializeYAML(doc map[string]interface{}) ([]byte, error) {
	yamlBytes, err := sigsyaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serializing YAML: %w", err)
	}

	return ensureNewline(yamlBytes), nil
}

// SerializeJSON converts a document map to indented JSON with sorted keys.
// Empty objects and arrays are kept as {} and [].
func SerializeJSON(doc map[string]interface{}, indent string) ([]byte, error) {
	if indent == "" {
		indent = "  "
	}

	var buf bytes.Buffer
	if err := jsonWriteValue(&buf, doc, indent, 0); err != nil {
		return nil, fmt.Errorf("serializing JSON: %w", err)
	}

	return ensureNewline(buf.Bytes()), nil
}

// SerializeYAMLStream joins documents into one multi-document YAML stream.
func SerializeYAMLStream(docs []map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer

	for i, doc := range docs {
		if i > 0 {
			buf.WriteString("---\n")
		}

		b, err := SerializeYAML(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}

		buf.Write(b)
	}

	return buf.Bytes(), nil
}

// SerializeJSONStream serializes a single document as JSON. JSON has no
// document separator, so more than one document is an error.
func SerializeJSONStream(docs []map[string]interface{}) ([]byte, error) {
	switch len(docs) {
	case 0:
		return nil, nil
	case 1:
		return SerializeJSON(docs[0], "  ")
	default:
		return nil, fmt.Errorf("json output holds a single document, got %d (use yaml)", len(docs))
	}
}

func ensureNewline(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}

	return b
}

// jsonWriteValue recursively writes a JSON value with indentation.
func jsonWriteValue(buf *bytes.Buffer, v interface{}, indent string, level int) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case float64:
		if val == float64(int64(val)) {
			buf.WriteString(strconv.FormatInt(int64(val), 10))
		} else {
			buf.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
		}
	case int:
		buf.WriteString(strconv.Itoa(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case string:
		buf.WriteString(jsonQuote(val))
	case map[string]interface{}:
		if len(val) == 0 {
			buf.WriteString("{}")

			return nil
		}

		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		buf.WriteString("{\n")

		for i, k := range keys {
			writeIndent(buf, indent, level+1)
			buf.WriteString(jsonQuote(k))
			buf.WriteString(": ")

			if err := jsonWriteValue(buf, val[k], indent, level+1); err != nil {
				return err
			}

			if i < len(keys)-1 {
				buf.WriteByte(',')
			}

			buf.WriteByte('\n')
		}

		writeIndent(buf, indent, level)
		buf.WriteByte('}')
	case []interface{}:
		if len(val) == 0 {
			buf.WriteString("[]")

			return nil
		}

		buf.WriteString("[\n")

		for i, item := range val {
			writeIndent(buf, indent, level+1)

			if err := jsonWriteValue(buf, item, indent, level+1); err != nil {
				return err
			}

			if i < len(val)-1 {
				buf.WriteByte(',')
			}

			buf.WriteByte('\n')
		}

		writeIndent(buf, indent, level)
		buf.WriteByte(']')
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}

	return nil
}

func writeIndent(buf *bytes.Buffer, indent string, level int) {
	for range level {
		buf.WriteString(indent)
	}
}

// jsonQuote performs JSON string quoting with proper escaping.
func jsonQuote(s string) string {
	var b strings.Builder

	b.WriteByte('"')

	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}

	b.WriteByte('"')

	return b.String()
}
