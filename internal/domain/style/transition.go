package style

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// TransitionKey is the nested record controllers read timing from.
const TransitionKey = "transition"

// Transition is the typed view of a record's transition configuration. Times
// are in seconds. A nil Duration means "controller default"; an explicit zero
// means the change is applied instantly.
type Transition struct {
	Duration  *float64 `mapstructure:"duration"`
	Delay     float64  `mapstructure:"delay"`
	Ease      string   `mapstructure:"ease"`
	Stiffness float64  `mapstructure:"stiffness"`
	Damping   float64  `mapstructure:"damping"`
}

// Instant reports whether the transition was explicitly given zero duration.
func (t Transition) Instant() bool {
	return t.Duration != nil && *t.Duration <= 0
}

// Transition decodes the nested transition record. ok is false when the record
// carries none.
func (r Record) Transition() (Transition, bool, error) {
	raw, present := r[TransitionKey]
	if !present || raw == nil {
		return Transition{}, false, nil
	}
	nested, isRecord := AsRecord(raw)
	if !isRecord {
		return Transition{}, false, fmt.Errorf("transition is %T, not a record", raw)
	}

	var out Transition
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return Transition{}, false, err
	}
	if err := decoder.Decode(map[string]any(nested)); err != nil {
		return Transition{}, false, fmt.Errorf("decode transition: %w", err)
	}
	return out, true, nil
}
