package target

import (
	"fmt"

	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
	cadenceerrors "github.com/alexisbeaulieu97/cadence/pkg/errors"
)

// FinalStyle is the merged, tagged record handed to a controller. Record always
// carries style.ActiveStateKey set to ActiveState.
type FinalStyle struct {
	ActiveState string
	Record      style.Record
}

// Compositor merges baseline, active state, directive override and state tag
// into one FinalStyle per target, remembering each target's previous state.
type Compositor struct {
	history *History
}

// NewCompositor creates a compositor with its own empty history.
func NewCompositor() *Compositor {
	return &Compositor{history: NewHistory()}
}

// History exposes the compositor's state arena.
func (c *Compositor) History() *History {
	return c.history
}

// ComposeOne resolves the final style of t for the active state. The directive
// lookup uses the state recorded by the previous call; the history is updated
// last. An undeclared active state is an error and leaves the history untouched.
func (c *Compositor) ComposeOne(t *Target, active string, global, addOns style.Dependencies) (FinalStyle, error) {
	if t == nil {
		return FinalStyle{}, fmt.Errorf("compose: target is nil")
	}

	baseline := style.Record{style.ActiveStateKey: active}
	if raw, ok := t.States[DefaultState]; ok {
		resolved, err := style.Resolve(raw, global, addOns)
		if err != nil {
			return FinalStyle{}, fmt.Errorf("resolve %s.%s: %w", t.Name, DefaultState, err)
		}
		baseline = resolved
	}

	raw, ok := t.States[active]
	if !ok || active == "" {
		return FinalStyle{}, cadenceerrors.NewUnknownStateError(t.Name, active)
	}
	activeStyle, err := style.Resolve(raw, global, addOns)
	if err != nil {
		return FinalStyle{}, fmt.Errorf("resolve %s.%s: %w", t.Name, active, err)
	}

	override := Match(t.Meta.Directives, c.history.Previous(t.Name), active)

	merged := style.Merge(baseline, activeStyle, override, style.Record{style.ActiveStateKey: active})
	c.history.Record(t.Name, active)

	return FinalStyle{ActiveState: active, Record: merged}, nil
}
