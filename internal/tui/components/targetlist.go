package components

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TargetEntry is the latest known state of one target.
type TargetEntry struct {
	Name    string
	State   string
	Status  string
	Message string
	Values  map[string]float64
	Frames  int
}

// TargetList renders targets in a fixed order.
type TargetList struct {
	entries []TargetEntry
}

// NewTargetList constructs a list from order, looking each name up in targets.
// Names missing from targets render as empty pending entries.
func NewTargetList(order []string, targets map[string]TargetEntry) TargetList {
	entries := make([]TargetEntry, 0, len(order))
	for _, name := range order {
		entry, ok := targets[name]
		if !ok {
			entry = TargetEntry{Name: name}
		}
		entries = append(entries, entry)
	}
	return TargetList{entries: entries}
}

// Entries returns the ordered entries.
func (l TargetList) Entries() []TargetEntry {
	clone := make([]TargetEntry, len(l.entries))
	copy(clone, l.entries)
	return clone
}

// FormatValues renders numeric properties as "k=v" pairs sorted by key.
func FormatValues(values map[string]float64) string {
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, strconv.FormatFloat(values[k], 'f', -1, 64)))
	}
	return strings.Join(parts, " ")
}
