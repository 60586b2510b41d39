package components

import (
	"fmt"
	"strings"
)

// SummaryData aggregates the outcome of the runs seen so far.
type SummaryData struct {
	Keyframes int
	Failures  int
	Cursor    int
	Stop      string
	Running   bool
	Finished  bool
	Cancelled bool
	Err       error
}

// Summary renders a textual run summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string
	if s.data.Keyframes > 0 {
		lines = append(lines, fmt.Sprintf("Keyframes: %d dispatched, cursor at %d", s.data.Keyframes, s.data.Cursor))
	}
	if s.data.Failures > 0 {
		lines = append(lines, fmt.Sprintf("Failed dispatches: %d", s.data.Failures))
	}

	switch {
	case s.data.Cancelled:
		lines = append(lines, "Preview cancelled")
	case s.data.Running:
		lines = append(lines, "Running...")
	case s.data.Err != nil:
		lines = append(lines, fmt.Sprintf("Stopped with error: %v", s.data.Err))
	case s.data.Stop != "":
		lines = append(lines, fmt.Sprintf("Stopped: %s", s.data.Stop))
	}

	return strings.Join(lines, "\n")
}
