package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/conceptlink/internal/ui/components"
	"github.com/abhisek/conceptlink/internal/ui/theme"
)

const arcadeTitleFull = `╔═╗┌─┐┌┐┌┌─┐┌─┐┌─┐┌┬┐  ╦  ┬┌┐┌┬┌─
║  │ ││││├┤ │  ├─┘ │   ║  ││││├┴┐
╚═╝└─┘┘└┘└─┘└─┘┴   ┴   ╩═╝┴┘└┘┴ ┴`

const arcadeTitleCompact = "C O N C E P T · L I N K"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Highlight).
		Bold(true)

	title := arcadeTitleFull
	if compact {
		title = arcadeTitleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title))
}

// renderPuzzleCard shows what is about to be played and the best result so far.
func renderPuzzleCard(info puzzleInfo, cw int, compact bool) string {
	titleStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	statStyle := lipgloss.NewStyle().Foreground(theme.Info).Bold(true)
	bestStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	stats := fmt.Sprintf("%s  %s",
		statStyle.Render(fmt.Sprintf("● %d CONCEPTS", info.Nodes)),
		statStyle.Render(fmt.Sprintf("→ %d LINKS", info.Links)),
	)
	if compact {
		stats = statStyle.Render(fmt.Sprintf("●%d →%d", info.Nodes, info.Links))
	}

	best := dimStyle.Render("◆ NOT PLAYED YET")
	if info.Played > 0 {
		best = bestStyle.Render(fmt.Sprintf("◆ BEST %d/100 · %d PLAYS", info.Best, info.Played))
	}

	content := titleStyle.Render(info.Title) + "\n" + stats + "\n" + best
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Info).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(content)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

func renderMenu(m components.Menu, cw int, compact bool) string {
	return lipgloss.PlaceHorizontal(cw, lipgloss.Center, m.View(buttonWidth, compact))
}

func renderNotice(text string, cw int) string {
	return lipgloss.NewStyle().Foreground(theme.Accent).Width(cw).Align(lipgloss.Center).Render("⚠ " + text)
}
