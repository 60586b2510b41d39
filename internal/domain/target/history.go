package target

// History records the last active state of each target, keyed by target name.
// Each compositor owns its own History so a target definition can be shared by
// several chains without their transitions interfering.
type History struct {
	last map[string]string
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{last: make(map[string]string)}
}

// Previous returns the last recorded state for the target, or "".
func (h *History) Previous(name string) string {
	if h == nil {
		return ""
	}
	return h.last[name]
}

// Record stores state as the target's latest active state.
func (h *History) Record(name, state string) {
	if h.last == nil {
		h.last = make(map[string]string)
	}
	h.last[name] = state
}

// Snapshot copies the history for persistence.
func (h *History) Snapshot() map[string]string {
	out := make(map[string]string, len(h.last))
	for k, v := range h.last {
		out[k] = v
	}
	return out
}

// Restore replaces the history with a previously taken snapshot.
func (h *History) Restore(snapshot map[string]string) {
	h.last = make(map[string]string, len(snapshot))
	for k, v := range snapshot {
		h.last[k] = v
	}
}

// Reset forgets every recorded state.
func (h *History) Reset() {
	h.last = make(map[string]string)
}
