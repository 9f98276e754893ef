package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/conceptlink/internal/ui/theme"
)

// PanelWidth is the inner width shared by every stacked section on a
// screen, so cards and buttons line up. It leaves room for the cabinet
// border and padding, capped for readability on wide terminals.
func PanelWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 60)
}

// Cabinet draws the double border that frames a whole screen and centres
// content inside it.
func Cabinet(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Card is a padded rounded box panelWidth wide.
func Card(content string, panelWidth int) string {
	return theme.Card.
		Width(panelWidth-2).
		Align(lipgloss.Center).
		Padding(1, 2).
		Render(content)
}

// ButtonState selects how Button draws.
type ButtonState int

const (
	ButtonNormal ButtonState = iota
	ButtonFocused
	ButtonDisabled
)

var (
	buttonBase = lipgloss.NewStyle().
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Foreground(theme.Text).
			Padding(0, 1)
	buttonFocused = buttonBase.
			Bold(true).
			Foreground(theme.BgDark).
			Background(theme.Highlight).
			BorderForeground(theme.Highlight)
	buttonDisabled = buttonBase.Foreground(theme.TextDim)
)

// Button draws a bordered label. A focused button is highlighted and
// marked with a caret.
func Button(label string, state ButtonState, width int) string {
	switch state {
	case ButtonFocused:
		return buttonFocused.Width(width).Render("▸ " + label)
	case ButtonDisabled:
		return buttonDisabled.Width(width).Render(label)
	}
	return buttonBase.Width(width).Render(label)
}

// FocusIf is ButtonFocused when focused is true and ButtonNormal otherwise.
func FocusIf(focused bool) ButtonState {
	if focused {
		return ButtonFocused
	}
	return ButtonNormal
}
