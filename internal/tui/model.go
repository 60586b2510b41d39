// Package tui implements the interactive sequence preview.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/cadence/internal/controller"
	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
	"github.com/alexisbeaulieu97/cadence/internal/engine"
	"github.com/alexisbeaulieu97/cadence/internal/model"
	"github.com/alexisbeaulieu97/cadence/internal/tui/components"
)

// Advancer runs one Advance call.
type Advancer func(ctx context.Context, req engine.Request) (*model.Run, error)

// Options configures a preview Model.
type Options struct {
	Title   string
	Targets []string
	Floor   int
	Ceiling int
	Cursor  int
	Advance Advancer
	// Auto runs forward to the ceiling on start and quits when the run ends.
	Auto bool
}

// FrameMsg carries one spring frame into the program.
type FrameMsg struct {
	Frame controller.Frame
}

// KeyframeMsg reports that the driver started a keyframe at Cursor.
type KeyframeMsg struct {
	Cursor int
}

// RunMsg reports the end of an Advance call.
type RunMsg struct {
	Run *model.Run
	Err error
}

// Model contains the Bubbletea state for the sequence preview.
type Model struct {
	title    string
	order    []string
	targets  map[string]components.TargetEntry
	floor    int
	ceiling  int
	cursor   int
	advance  Advancer
	auto     bool
	ctx      context.Context
	cancel   context.CancelFunc
	previous map[string]style.Record
	diff     string

	running   bool
	showDiff  bool
	keyframes int
	failures  int
	stop      string
	err       error
	finished  bool
	cancelled bool
}

// NewModel constructs a preview model.
func NewModel(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		title:    opts.Title,
		order:    append([]string(nil), opts.Targets...),
		targets:  make(map[string]components.TargetEntry, len(opts.Targets)),
		floor:    opts.Floor,
		ceiling:  opts.Ceiling,
		cursor:   opts.Cursor,
		advance:  opts.Advance,
		auto:     opts.Auto,
		ctx:      ctx,
		cancel:   cancel,
		previous: make(map[string]style.Record),
		running:  opts.Auto,
	}
	for _, name := range m.order {
		m.targets[name] = components.TargetEntry{Name: name, Status: model.StatusPending}
	}
	return m
}

// Init starts a forward run in auto mode.
func (m Model) Init() tea.Cmd {
	if m.auto {
		return advanceCmd(m.ctx, m.advance, engine.Request{Direction: engine.Forward})
	}
	return nil
}

// Cursor returns the last known cursor.
func (m Model) Cursor() int { return m.cursor }

// Keyframes returns the number of keyframes dispatched so far.
func (m Model) Keyframes() int { return m.keyframes }

// IsFinished reports whether the preview has ended.
func (m Model) IsFinished() bool { return m.finished }

// Err returns the error of the most recent run.
func (m Model) Err() error { return m.err }

func (m *Model) ensureTarget(name string) components.TargetEntry {
	entry, ok := m.targets[name]
	if !ok {
		entry = components.TargetEntry{Name: name, Status: model.StatusPending}
		m.order = append(m.order, name)
	}
	return entry
}
