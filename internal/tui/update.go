package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/cadence/internal/domain/target"
	"github.com/alexisbeaulieu97/cadence/internal/engine"
	"github.com/alexisbeaulieu97/cadence/internal/model"
	"github.com/alexisbeaulieu97/cadence/pkg/diff"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case KeyframeMsg:
		m.cursor = msg.Cursor
		for name, entry := range m.targets {
			entry.Status = model.StatusRunning
			entry.Frames = 0
			m.targets[name] = entry
		}
		return m, nil
	case FrameMsg:
		f := msg.Frame
		entry := m.ensureTarget(f.Target)
		entry.State = f.State
		entry.Values = f.Values
		entry.Frames = f.Index + 1
		entry.Status = model.StatusRunning
		if f.Settled {
			entry.Status = model.StatusSettled
		}
		m.targets[f.Target] = entry
		return m, nil
	case RunMsg:
		m.running = false
		m.applyRun(msg.Run, msg.Err)
		if m.auto {
			m.finished = true
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.cancelled = m.running || msg.Type == tea.KeyCtrlC
		m.finished = true
		m.cancel()
		return m, tea.Quit
	case "d":
		m.showDiff = !m.showDiff
		return m, nil
	}

	if m.running {
		return m, nil
	}

	var req engine.Request
	switch msg.String() {
	case "right", "l", "n":
		req = engine.Request{Direction: engine.Forward, MaxKeyframes: 1}
	case "left", "h", "p":
		req = engine.Request{Direction: engine.Backward, MaxKeyframes: 1}
	case "enter", " ":
		req = engine.Request{Direction: engine.Forward}
	case ".":
		req = engine.Request{Direction: engine.Hold}
	default:
		return m, nil
	}
	cmd := m.start(req)
	return m, cmd
}

func (m *Model) applyRun(run *model.Run, err error) {
	m.err = err
	if run == nil {
		return
	}
	m.cursor = run.EndCursor
	m.stop = string(run.Stop)

	for _, kf := range run.Keyframes {
		m.keyframes++
		for _, res := range kf.Results {
			entry := m.ensureTarget(res.Target)
			entry.State = res.ActiveState
			entry.Status = res.Status
			entry.Message = ""
			if res.Error != nil {
				entry.Message = res.Error.Error()
				m.failures++
			}
			m.targets[res.Target] = entry
		}
	}

	if last := run.Last(); last != nil {
		m.diff = m.styleDiff(last.Cursor, last.Styles)
	}
}

// styleDiff renders how each target's style changed since the previous
// keyframe and remembers the new styles.
func (m *Model) styleDiff(cursor int, styles map[string]target.FinalStyle) string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)

	var parts []string
	for _, name := range names {
		next := styles[name].Record
		prev := m.previous[name]
		out, err := diff.Styles(prev, next, fmt.Sprintf("%s (before)", name), fmt.Sprintf("%s @%d", name, cursor))
		if err != nil {
			parts = append(parts, fmt.Sprintf("%s: %v", name, err))
		} else if out != "" {
			parts = append(parts, out)
		}
		m.previous[name] = next
	}
	return strings.TrimRight(strings.Join(parts, "\n"), "\n")
}
