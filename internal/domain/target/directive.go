package target

import "github.com/alexisbeaulieu97/cadence/internal/domain/style"

// PairSeparator joins the two state names of a transition pair key.
const PairSeparator = "_"

// PairKey builds the directive key for a transition from a to b.
func PairKey(a, b string) string {
	return a + PairSeparator + b
}

// Match returns the override registered for the transition between previous and
// active, trying previous_active before active_previous. The result is empty
// when there are no directives, no previous state, or no matching key.
func Match(directives map[string]style.Record, previous, active string) style.Record {
	if len(directives) == 0 || previous == "" {
		return style.Record{}
	}
	if override, ok := directives[PairKey(previous, active)]; ok {
		return override.Clone()
	}
	if override, ok := directives[PairKey(active, previous)]; ok {
		return override.Clone()
	}
	return style.Record{}
}
