package target

import (
	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
)

// DefaultState is the optional baseline state applied beneath every active state.
const DefaultState = "default"

// Target is a named animatable entity: its possible states and the metadata that
// decides which one is active for a given cursor.
type Target struct {
	Name   string
	States map[string]style.Raw
	Meta   Meta
}

// Meta controls state selection and transition-specific overrides.
type Meta struct {
	// Directions lists the state selected at each cursor position.
	Directions []string
	// DefaultDirection is used when the cursor is out of range of Directions.
	DefaultDirection string
	// Directives holds partial overrides keyed by PairKey. Lookup is symmetric.
	Directives map[string]style.Record
}

// HasState reports whether the target declares the named state.
func (t *Target) HasState(name string) bool {
	if t == nil || name == "" {
		return false
	}
	_, ok := t.States[name]
	return ok
}

// SelectState picks the active state name: the explicit state when given,
// otherwise the direction at cursor, otherwise the default direction.
func SelectState(meta Meta, cursor int, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cursor >= 0 && cursor < len(meta.Directions) && meta.Directions[cursor] != "" {
		return meta.Directions[cursor]
	}
	return meta.DefaultDirection
}
