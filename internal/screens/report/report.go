// Package report shows the performance profile of a completed session.
package report

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/conceptlink/internal/analytics"
	"github.com/abhisek/conceptlink/internal/game"
	"github.com/abhisek/conceptlink/internal/graph"
	"github.com/abhisek/conceptlink/internal/leads"
	"github.com/abhisek/conceptlink/internal/router"
	"github.com/abhisek/conceptlink/internal/screen"
	"github.com/abhisek/conceptlink/internal/screens/share"
	"github.com/abhisek/conceptlink/internal/ui/components"
	"github.com/abhisek/conceptlink/internal/ui/layout"
	"github.com/abhisek/conceptlink/internal/ui/theme"
)

// ReportScreen displays the session profile.
type ReportScreen struct {
	session   *game.Session
	publisher leads.Publisher
	logger    *zap.Logger
	state     game.State
	profile   analytics.Profile
	errMsg    string
}

var _ screen.Screen = (*ReportScreen)(nil)
var _ screen.KeyHintProvider = (*ReportScreen)(nil)
var _ screen.HeaderStatsProvider = (*ReportScreen)(nil)

// New creates a report for a completed session. publisher may be nil, in
// which case sharing is not offered.
func New(s *game.Session, publisher leads.Publisher, logger *zap.Logger) *ReportScreen {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &ReportScreen{
		session:   s,
		publisher: publisher,
		logger:    logger,
		state:     s.State(),
	}
	p, err := s.Profile()
	if err != nil {
		r.errMsg = err.Error()
	}
	r.profile = p
	return r
}

func (r *ReportScreen) Init() tea.Cmd {
	return nil
}

func (r *ReportScreen) Title() string {
	return "Your Report"
}

// Profile returns the profile being displayed.
func (r *ReportScreen) Profile() analytics.Profile {
	return r.profile
}

func (r *ReportScreen) HeaderStats() *layout.HeaderStats {
	return &layout.HeaderStats{Score: r.state.Score, HintsRemaining: r.state.HintsRemaining}
}

func (r *ReportScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Home"}}
	if r.canShare() {
		hints = append(hints, layout.KeyHint{Key: "S", Description: "Share results"})
	}
	return hints
}

func (r *ReportScreen) canShare() bool {
	return r.publisher != nil && r.errMsg == ""
}

func (r *ReportScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return r, nil
	}
	switch kmsg.String() {
	case "enter", "q":
		return r, router.Home
	case "s", "S":
		if !r.canShare() {
			return r, nil
		}
		next := share.New(r.session, r.publisher, r.logger)
		return r, router.Open(next)
	}
	return r, nil
}

func (r *ReportScreen) View(width, height int) string {
	if r.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", r.errMsg))
	}

	p := r.profile
	cw := min(width-4, 72)
	center := func(s string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
	}

	var b strings.Builder
	headline := "Puzzle complete!"
	if r.state.CompletedBy == game.CompletedByFinish {
		headline = "Session finished"
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(headline)))
	b.WriteString("\n\n")

	b.WriteString(center(fmt.Sprintf("%s   %s",
		lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true).
			Render(fmt.Sprintf("Completion score %d/100", p.CompletionScore)),
		lipgloss.NewStyle().Foreground(overallColor(p.Overall)).Bold(true).
			Render(string(p.Overall)))))
	b.WriteString("\n\n")

	for _, m := range analytics.AllMetrics() {
		bar := components.ScoreMeter(fmt.Sprintf("%-21s", m), p.Metrics.Get(m), cw)
		b.WriteString(center(bar.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(center(theme.Correct.Render("Top skill: ") + string(p.TopSkill) +
		theme.Hint.Render("  "+analytics.Describe(p.TopSkill))))
	b.WriteString("\n")
	b.WriteString(center(theme.Neutral.Render("Focus area: ") + string(p.FocusArea) +
		theme.Hint.Render("  "+analytics.Describe(p.FocusArea))))
	b.WriteString("\n\n")

	c := p.Counters
	b.WriteString(center(theme.Subtitle.Render(fmt.Sprintf(
		"%d correct · %d incorrect · %d neutral · %d hints · %d moves · %s",
		c.Correct, c.Incorrect, c.Neutral, c.HintsUsed, c.Interactions,
		formatSeconds(c.ElapsedSeconds)))))
	b.WriteString("\n")

	if len(p.Mistakes) > 0 {
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Mistakes to review")))
		b.WriteString("\n")
		model := r.session.Model()
		for _, m := range p.Mistakes {
			line := fmt.Sprintf("%s → %s", labelFor(model.Node, m.Source), labelFor(model.Node, m.Target))
			if m.Count > 1 {
				line += fmt.Sprintf(" (×%d)", m.Count)
			}
			if m.Explanation != "" {
				line += "  " + theme.Hint.Render(m.Explanation)
			}
			b.WriteString(center(lipgloss.NewStyle().MaxWidth(cw).Foreground(theme.Error).Render(line)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func overallColor(l analytics.Label) color.Color {
	switch l {
	case analytics.Excellent:
		return theme.Success
	case analytics.Good:
		return theme.Accent
	}
	return theme.Info
}

func formatSeconds(s float64) string {
	total := int(s)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func labelFor(lookup func(string) (graph.Node, bool), id string) string {
	if n, ok := lookup(id); ok {
		return n.Label
	}
	return id
}
