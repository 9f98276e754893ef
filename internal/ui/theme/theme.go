// Package theme holds the palette and shared lipgloss styles.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

var (
	Primary   = lipgloss.Color("#7C83FD")
	Secondary = lipgloss.Color("#2DD4BF")
	Accent    = lipgloss.Color("#FBBF24")
	Highlight = lipgloss.Color("#FDE047")
	Info      = lipgloss.Color("#38BDF8")
	Success   = lipgloss.Color("#4ADE80")
	Error     = lipgloss.Color("#FB7185")
	Text      = lipgloss.Color("#F1F5F9")
	TextDim   = lipgloss.Color("#8B9BB4")
	BgDark    = lipgloss.Color("#111827")
	BgCard    = lipgloss.Color("#1F2937")
	Border    = lipgloss.Color("#374151")
)

var (
	Body     = lipgloss.NewStyle().Foreground(Text)
	Title    = Body.Foreground(Primary).Bold(true).Align(lipgloss.Center)
	Subtitle = Body.Foreground(TextDim).Align(lipgloss.Center)
	Hint     = Body.Foreground(TextDim).Italic(true)
	Card     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(0, 1)
)

// Node and feedback states on the board.
var (
	Unselected = Body
	Selected   = Body.Foreground(Primary).Bold(true)
	// Picked is the source node of a connection in progress.
	Picked = lipgloss.NewStyle().Foreground(BgDark).Background(Highlight).Bold(true)
	// Locked nodes are marked by the puzzle author and take no input.
	Locked    = lipgloss.NewStyle().Foreground(Border).Strikethrough(true)
	Correct   = Body.Foreground(Success).Bold(true)
	Incorrect = Body.Foreground(Error).Bold(true)
	Neutral   = Body.Foreground(Accent)
)

var kindColors = map[string]color.Color{
	"scenario":    Info,
	"decision":    Highlight,
	"outcome":     Success,
	"information": Secondary,
}

// KindColor is the badge colour for a node kind; unknown kinds are dim.
func KindColor(kind string) color.Color {
	if c, ok := kindColors[kind]; ok {
		return c
	}
	return TextDim
}

// KindBadge renders "[kind]" in the kind's colour.
func KindBadge(kind string) string {
	return lipgloss.NewStyle().Foreground(KindColor(kind)).Render("[" + kind + "]")
}
