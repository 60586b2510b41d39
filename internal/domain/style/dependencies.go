package style

import (
	"errors"
	"fmt"
)

// SequenceIndexKey is the dependency under which the current cursor is injected.
const SequenceIndexKey = "sequenceIndex"

// ErrMissingDependency marks a computed style that could not run because a
// dependency was absent. Resolve absorbs it into an empty record.
var ErrMissingDependency = errors.New("missing dependency")

// Dependencies is the open context handed to computed styles: caller supplied
// values such as layout measurements, extended at resolution time with the
// sequence index and the resolved abstract targets.
type Dependencies map[string]any

// With returns a new context holding d overlaid with addOns. Neither input is modified.
func (d Dependencies) With(addOns Dependencies) Dependencies {
	out := make(Dependencies, len(d)+len(addOns))
	for k, v := range d {
		out[k] = v
	}
	for k, v := range addOns {
		out[k] = v
	}
	return out
}

// Require returns the named dependency or an error wrapping ErrMissingDependency.
func (d Dependencies) Require(name string) (any, error) {
	v, ok := d[name]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingDependency, name)
	}
	return v, nil
}

// Record returns the named dependency as a style record, typically the resolved
// style of an abstract target.
func (d Dependencies) Record(name string) (Record, error) {
	v, err := d.Require(name)
	if err != nil {
		return nil, err
	}
	rec, ok := AsRecord(v)
	if !ok {
		return nil, fmt.Errorf("dependency %s is %T, not a style record", name, v)
	}
	return rec, nil
}

// Number returns the named dependency as a float64.
func (d Dependencies) Number(name string) (float64, error) {
	v, err := d.Require(name)
	if err != nil {
		return 0, err
	}
	n, ok := Number(v)
	if !ok {
		return 0, fmt.Errorf("dependency %s is %T, not a number", name, v)
	}
	return n, nil
}
