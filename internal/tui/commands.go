package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/cadence/internal/engine"
)

func advanceCmd(ctx context.Context, advance Advancer, req engine.Request) tea.Cmd {
	return func() tea.Msg {
		if advance == nil {
			return RunMsg{Err: errors.New("no sequence to advance")}
		}
		run, err := advance(ctx, req)
		return RunMsg{Run: run, Err: err}
	}
}

func (m *Model) start(req engine.Request) tea.Cmd {
	m.running = true
	m.err = nil
	for name, entry := range m.targets {
		entry.Message = ""
		m.targets[name] = entry
	}
	return advanceCmd(m.ctx, m.advance, req)
}
