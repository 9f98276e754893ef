package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/conceptlink/internal/ui/theme"
)

// Meter is a one-line horizontal bar: an optional label, the bar, and an
// optional percentage. Fraction is clamped to [0, 1].
type Meter struct {
	Label       string
	Fraction    float64
	Width       int
	Fill        color.Color
	ShowPercent bool
}

// ScoreMeter shows a 0–100 metric, green from 80, amber from 60, red below.
func ScoreMeter(label string, score float64, width int) Meter {
	fill := theme.Error
	switch {
	case score >= 80:
		fill = theme.Success
	case score >= 60:
		fill = theme.Accent
	}
	return Meter{Label: label, Fraction: score / 100, Width: width, Fill: fill, ShowPercent: true}
}

func (m Meter) View() string {
	frac := min(max(m.Fraction, 0), 1)

	var prefix, suffix string
	if m.Label != "" {
		prefix = theme.Body.Render(m.Label) + "  "
	}
	if m.ShowPercent {
		suffix = lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf(" %4.0f%%", frac*100))
	}

	cells := max(m.Width-lipgloss.Width(prefix)-lipgloss.Width(suffix), 4)
	filled := int(float64(cells)*frac + 0.5)

	fill := m.Fill
	if fill == nil {
		fill = theme.Secondary
	}
	bar := lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", cells-filled))
	return prefix + bar + suffix
}
