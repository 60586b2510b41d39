package engine

import (
	"fmt"
	"strings"
)

// Direction controls how the cursor moves after a keyframe settles.
type Direction int

const (
	// Hold dispatches one keyframe and leaves the cursor where it is.
	Hold Direction = iota
	// Forward increments the cursor and keeps chaining until the ceiling.
	Forward
	// Backward decrements the cursor and keeps chaining until the floor.
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "hold"
	}
}

// ParseDirection accepts forward, backward and hold (plus a few aliases).
// An empty string is Hold.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "next", "fwd":
		return Forward, nil
	case "backward", "back", "prev":
		return Backward, nil
	case "", "hold", "none", "noop":
		return Hold, nil
	default:
		return Hold, fmt.Errorf("unknown direction %q (want forward, backward or hold)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
