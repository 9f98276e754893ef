// Package layout draws the frame around the active screen: a header bar
// with the game name, screen title and live stats, and a footer of key
// hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/conceptlink/internal/ui/theme"
)

// The board needs room for two node columns plus the edge list.
const (
	MinWidth  = 80
	MinHeight = 24
)

type KeyHint struct {
	Key         string
	Description string
}

// HeaderStats are shown at the right of the header while a game is open.
type HeaderStats struct {
	Score          int
	HintsRemaining int
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("Window is %d×%d.\nConceptLink needs at least %d×%d.", width, height, MinWidth, MinHeight)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Body.Align(lipgloss.Center).Render(msg))
}

var bar = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border).
	Padding(0, 1)

// RenderHeader centres title between the brand and the stats.
func RenderHeader(title string, stats *HeaderStats, width int) string {
	inner := max(width-bar.GetHorizontalFrameSize(), 0)

	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("ConceptLink")
	right := ""
	if stats != nil {
		right = lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("◆ %d pts", stats.Score)) +
			"  " +
			lipgloss.NewStyle().Foreground(theme.Info).Render(fmt.Sprintf("? %d hints", stats.HintsRemaining))
	}

	// Equal side columns keep the title centred whatever the stats width.
	side := max(lipgloss.Width(brand), lipgloss.Width(right))
	middle := max(inner-2*side, 0)
	line := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.PlaceHorizontal(side, lipgloss.Left, brand),
		lipgloss.PlaceHorizontal(middle, lipgloss.Center, theme.Body.Render(title)),
		lipgloss.PlaceHorizontal(side, lipgloss.Right, right),
	)
	return bar.Width(width).Render(line)
}

// RenderFooter lists hints left to right. When they do not fit, the
// descriptions are dropped and only the keys remain.
func RenderFooter(hints []KeyHint, width int) string {
	inner := max(width-bar.GetHorizontalFrameSize(), 0)
	line := joinHints(hints, true)
	if lipgloss.Width(line) > inner {
		line = joinHints(hints, false)
	}
	return bar.Width(width).Render(line)
}

func joinHints(hints []KeyHint, withDesc bool) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key)
		if withDesc {
			parts[i] += " " + desc.Render(h.Description)
		}
	}
	return strings.Join(parts, "   ")
}

// RenderFrame stacks header, content and footer, padding content so the
// footer sits on the last rows.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(body).MaxHeight(body).Render(content),
		footer,
	)
}
