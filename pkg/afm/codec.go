package afm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// UnknownFilterError reports a filter item whose wrapper keys do not name
// exactly one known variant.
type UnknownFilterError struct {
	Keys []string
}

func (e *UnknownFilterError) Error() string {
	if len(e.Keys) == 0 {
		return "empty filter item"
	}

	return fmt.Sprintf("unknown filter variant (keys: %s)", strings.Join(e.Keys, ", "))
}

// MarshalJSON encodes each filter wrapped in an object keyed by its kind.
func (fs Filters) MarshalJSON() ([]byte, error) {
	if fs == nil {
		return []byte("null"), nil
	}

	items := make([]map[FilterKind]Filter, len(fs))

	for i, f := range fs {
		if f == nil {
			return nil, fmt.Errorf("afm: filter %d is nil", i)
		}

		items[i] = map[FilterKind]Filter{f.Kind(): f}
	}

	return json.Marshal(items)
}

// UnmarshalJSON decodes a wrapped filter list. JSON null leaves the list
// nil, [] yields an empty non-nil list.
func (fs *Filters) UnmarshalJSON(data []byte) error {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("afm: invalid filter list: %w", err)
	}

	if raw == nil {
		*fs = nil
		return nil
	}

	out := make(Filters, 0, len(raw))

	for i, item := range raw {
		f, err := decodeFilter(item)
		if err != nil {
			return fmt.Errorf("afm: filter %d: %w", i, err)
		}

		out = append(out, f)
	}

	*fs = out

	return nil
}

// decodeFilter picks the variant from the single wrapper key.
func decodeFilter(item map[string]json.RawMessage) (Filter, error) {
	if len(item) != 1 {
		return nil, &UnknownFilterError{Keys: sortedKeys(item)}
	}

	for key, body := range item {
		switch FilterKind(key) {
		case KindRelativeDate:
			return decodeBody[RelativeDateFilter](key, body)
		case KindAbsoluteDate:
			return decodeBody[AbsoluteDateFilter](key, body)
		case KindPositiveAttribute:
			return decodeBody[PositiveAttributeFilter](key, body)
		case KindNegativeAttribute:
			return decodeBody[NegativeAttributeFilter](key, body)
		}
	}

	return nil, &UnknownFilterError{Keys: sortedKeys(item)}
}

// decodeBody decodes one variant body. The filter schema is closed, so
// unknown keys (a misspelled "in", say) are rejected rather than dropped.
func decodeBody[T Filter](key string, body json.RawMessage) (Filter, error) {
	var f T

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}

	return f, nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
