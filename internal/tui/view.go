package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alexisbeaulieu97/cadence/internal/model"
	"github.com/alexisbeaulieu97/cadence/internal/tui/components"
)

var titleCase = cases.Title(language.English, cases.NoLower)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render(fmt.Sprintf("Cadence • %s", m.heading())))

	progress := components.NewProgress(m.floor, m.ceiling).View(m.cursor)
	sections = append(sections, sectionStyle.Render("Cursor"), progress)

	entries := components.NewTargetList(m.order, m.targets).Entries()
	if len(entries) > 0 {
		sections = append(sections, sectionStyle.Render("Targets"), renderTargets(entries))
	}

	if m.showDiff && m.diff != "" {
		sections = append(sections, sectionStyle.Render("Style changes"), m.diff)
	}

	summary := components.NewSummary(components.SummaryData{
		Keyframes: m.keyframes,
		Failures:  m.failures,
		Cursor:    m.cursor,
		Stop:      m.stop,
		Running:   m.running,
		Finished:  m.finished,
		Cancelled: m.cancelled,
		Err:       m.err,
	}).View()
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	if !m.auto && !m.finished {
		sections = append(sections, helpStyle.Render("→ next • ← back • enter run • . hold • d diff • q quit"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderTargets(entries []components.TargetEntry) string {
	width := 0
	for _, e := range entries {
		width = max(width, len(e.Name))
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := fmt.Sprintf(" %s %-*s", StatusIcon(e.Status), width, e.Name)
		if e.State != "" {
			line += "  " + stateStyle.Render(titleCase.String(e.State))
		}
		if values := components.FormatValues(e.Values); values != "" {
			line += "  " + valuesStyle.Render(values)
		}
		if e.Frames > 0 {
			line += valuesStyle.Render(fmt.Sprintf(" (%d frames)", e.Frames))
		}
		if strings.TrimSpace(e.Message) != "" {
			line += " · " + failureStyle.Render(e.Message)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) heading() string {
	if strings.TrimSpace(m.title) != "" {
		return titleCase.String(m.title)
	}
	return "Sequence"
}

// StatusIcon returns the glyph representing a dispatch status.
func StatusIcon(status string) string {
	switch status {
	case model.StatusSettled:
		return settledStyle.Render("✓")
	case model.StatusRunning:
		return runningStyle.Render("⏳")
	case model.StatusFailed:
		return failureStyle.Render("✗")
	default:
		return pendingStyle.Render("…")
	}
}
