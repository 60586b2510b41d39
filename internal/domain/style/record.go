package style

import "sort"

// ActiveStateKey is the property carrying the state name that produced a final style.
const ActiveStateKey = "activeState"

// Record maps a style property to its value. Values are numbers, strings or nested
// records such as the transition configuration. Key order is irrelevant.
type Record map[string]any

// Clone returns a deep copy of the record. Nested maps and slices are copied so the
// clone can be merged into without aliasing the source.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// Keys returns the property names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge combines records left to right. Later records win per overlapping key.
// Inputs are never modified.
func Merge(records ...Record) Record {
	size := 0
	for _, r := range records {
		size += len(r)
	}
	out := make(Record, size)
	for _, r := range records {
		for k, v := range r {
			out[k] = cloneValue(v)
		}
	}
	return out
}

// AsRecord converts a loosely typed value into a Record. Decoded YAML and JSON
// documents produce map[string]any, which is accepted alongside Record.
func AsRecord(v any) (Record, bool) {
	switch typed := v.(type) {
	case Record:
		return typed, true
	case map[string]any:
		return Record(typed), true
	default:
		return nil, false
	}
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case Record:
		return typed.Clone()
	case map[string]any:
		return map[string]any(Record(typed).Clone())
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
