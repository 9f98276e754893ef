package board

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/conceptlink/internal/game"
	"github.com/abhisek/conceptlink/internal/ui/components"
	"github.com/abhisek/conceptlink/internal/ui/theme"
)

func (b *BoardScreen) View(width, height int) string {
	switch b.session.Phase() {
	case game.PhaseInstructions:
		return b.renderInstructions(width, height)
	case game.PhaseCompleted:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Subtitle.Render("Puzzle complete. Preparing your report..."))
	}
	if b.confirming {
		return b.renderConfirm(width, height)
	}
	return b.renderBoard(width, height)
}

func (b *BoardScreen) renderInstructions(width, height int) string {
	m := b.session.Model()
	st := b.session.State()
	cw := components.PanelWidth(width)

	instructions := m.Instructions
	if instructions == "" {
		instructions = "Connect each concept to the concept it leads to."
	}

	var body strings.Builder
	body.WriteString(theme.Title.Width(cw - 6).Render(m.Title))
	body.WriteString("\n\n")
	body.WriteString(theme.Body.Width(cw - 6).Render(instructions))
	body.WriteString("\n\n")
	body.WriteString(theme.Subtitle.Width(cw - 6).Render(fmt.Sprintf(
		"Make %d of %d connections to finish · %d hints available",
		st.RequiredToFinish, st.Required, st.HintsRemaining)))
	body.WriteString("\n\n")
	body.WriteString(components.Button("START", components.ButtonFocused, 18))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		components.Card(body.String(), cw))
}

func (b *BoardScreen) renderConfirm(width, height int) string {
	st := b.session.State()
	msg := fmt.Sprintf("Finish now with %d of %d connections?\n\n", st.Counts.Correct, st.Required)
	msg += theme.Hint.Render("Y to finish · N to keep going")
	box := theme.Card.
		BorderForeground(theme.Accent).
		Padding(1, 3).
		Align(lipgloss.Center).
		Render(msg)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (b *BoardScreen) renderBoard(width, height int) string {
	leftWidth := max(30, width/2-2)
	rightWidth := max(24, width-leftWidth-6)

	left := b.renderNodes(leftWidth)
	right := b.renderProgress(rightWidth)

	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.Card.Width(leftWidth).Render(left),
		"  ",
		theme.Card.Width(rightWidth).Render(right),
	)

	return columns + "\n\n" + b.renderStatus(width)
}

func (b *BoardScreen) renderNodes(width int) string {
	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Concepts"))
	sb.WriteString("\n\n")

	for i, n := range b.nodes() {
		marker := "  "
		if i == b.cursor {
			marker = "▸ "
		}

		label := n.Label
		style := theme.Unselected
		switch {
		case n.Locked:
			style = theme.Locked
		case n.ID == b.source:
			style = theme.Picked
		case i == b.cursor:
			style = theme.Selected
		}

		line := marker + style.Render(label)
		if n.Kind != "" && (n.Revealed || n.Locked) {
			line += " " + theme.KindBadge(string(n.Kind))
		}
		if n.Locked {
			line += " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render("locked")
		}
		sb.WriteString(lipgloss.NewStyle().MaxWidth(width).Render(line))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (b *BoardScreen) renderProgress(width int) string {
	st := b.session.State()
	var sb strings.Builder

	elapsed := st.Elapsed(b.now)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60

	sb.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Progress"))
	sb.WriteString("\n\n")

	pct := 0.0
	if st.RequiredToFinish > 0 {
		pct = float64(st.Counts.Correct) / float64(st.RequiredToFinish)
	}
	sb.WriteString(components.Meter{
		Label:    fmt.Sprintf("%d/%d", st.Counts.Correct, st.RequiredToFinish),
		Fraction: pct,
		Width:    width - 2,
	}.View())
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("%s %d   %s %d   %s %d:%02d\n\n",
		theme.Correct.Render("✓"), st.Counts.Correct,
		theme.Incorrect.Render("✗"), st.Counts.Incorrect,
		lipgloss.NewStyle().Foreground(theme.Info).Render("⏱"), mins, secs))

	sb.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Connections made"))
	sb.WriteString("\n")
	solved := st.Solved()
	if len(solved) == 0 {
		sb.WriteString(theme.Hint.Render("  none yet"))
		sb.WriteString("\n")
	}
	for _, entry := range b.session.Model().Solution {
		if !solved[entry.Edge()] {
			continue
		}
		line := fmt.Sprintf("  %s → %s", b.label(entry.Source), b.label(entry.Target))
		sb.WriteString(lipgloss.NewStyle().MaxWidth(width).Foreground(theme.Success).Render(line))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (b *BoardScreen) renderStatus(width int) string {
	if b.status.text == "" {
		return ""
	}
	style := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	switch b.status.tone {
	case ToneGood:
		style = style.Foreground(theme.Success).Bold(true)
	case ToneBad:
		style = style.Foreground(theme.Error)
	case ToneNeutral:
		style = style.Foreground(theme.Accent)
	default:
		style = style.Foreground(theme.TextDim)
	}
	return style.Render(b.status.text)
}
