package components

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// Progress renders the cursor position between floor and ceiling.
type Progress struct {
	bar     progress.Model
	floor   int
	ceiling int
}

// NewProgress creates a progress component spanning [floor, ceiling].
func NewProgress(floor, ceiling int) Progress {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30
	return Progress{bar: bar, floor: floor, ceiling: ceiling}
}

// Ratio returns how far cursor is through the range, clamped to [0, 1].
func (p Progress) Ratio(cursor int) float64 {
	span := p.ceiling - p.floor
	if span <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1.0, float64(cursor-p.floor)/float64(span)))
}

// View renders the bar for the provided cursor.
func (p Progress) View(cursor int) string {
	label := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d/%d", cursor, p.ceiling))
	return lipgloss.JoinHorizontal(lipgloss.Left, label, " ", p.bar.ViewAs(p.Ratio(cursor)))
}
