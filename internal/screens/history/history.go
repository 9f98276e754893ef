package history

import (
	"context"
	"fmt"
	"image/color"
	"slices"
	"strings"

	"charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/conceptlink/internal/analytics"
	"github.com/abhisek/conceptlink/internal/router"
	"github.com/abhisek/conceptlink/internal/screen"
	"github.com/abhisek/conceptlink/internal/store"
	"github.com/abhisek/conceptlink/internal/ui/layout"
	"github.com/abhisek/conceptlink/internal/ui/theme"
)

// DefaultLimit is how many past results are loaded.
const DefaultLimit = 50

// ResultLister is the slice of store.EventRepo the screen reads from.
type ResultLister interface {
	RecentResults(ctx context.Context, opts store.QueryOpts) ([]store.StoredResult, error)
}

type historyLoadedMsg struct {
	Results []store.StoredResult
	Err     error
}

// HistoryScreen lists past completed sessions in a table. Enter toggles a
// breakdown of the selected session below it.
type HistoryScreen struct {
	repo     ResultLister
	modelID  string
	results  []store.StoredResult
	table    table.Model
	showInfo bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

var columns = []table.Column{
	{Title: "Finished", Width: 18},
	{Title: "Puzzle", Width: 20},
	{Title: "Time", Width: 6},
	{Title: "Score", Width: 6},
	{Title: "Completion", Width: 10},
	{Title: "Profile", Width: 17},
}

// New creates a HistoryScreen. A non-empty modelID restricts the list to
// that puzzle.
func New(repo ResultLister, modelID string) *HistoryScreen {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(theme.TextDim).Bold(true)
	styles.Selected = theme.Selected
	styles.Cell = theme.Body.Padding(0, 1)

	t := table.New(table.WithColumns(columns), table.WithFocused(true))
	t.SetStyles(styles)
	return &HistoryScreen{repo: repo, modelID: modelID, table: t}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo, modelID := s.repo, s.modelID
	return func() tea.Msg {
		results, err := repo.RecentResults(context.Background(), store.QueryOpts{Limit: DefaultLimit})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		if modelID != "" {
			results = slices.DeleteFunc(results, func(r store.StoredResult) bool { return r.ModelID != modelID })
		}
		return historyLoadedMsg{Results: results}
	}
}

func (s *HistoryScreen) Title() string { return "Past Results" }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Breakdown"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.results = msg.Results
		s.table.SetRows(rows(msg.Results))
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, router.Back
		case "enter":
			s.showInfo = !s.showInfo
			return s, nil
		}
	}
	var cmd tea.Cmd
	s.table, cmd = s.table.Update(msg)
	return s, cmd
}

func rows(results []store.StoredResult) []table.Row {
	out := make([]table.Row, len(results))
	for i, r := range results {
		secs := int(r.ElapsedSeconds)
		out[i] = table.Row{
			r.CompletedAt.Local().Format("Jan 02 2006 15:04"),
			truncate(r.ModelID, 20),
			fmt.Sprintf("%d:%02d", secs/60, secs%60),
			fmt.Sprint(r.Score),
			fmt.Sprintf("%d/100", r.CompletionScore),
			string(r.Profile.Overall),
		}
	}
	return out
}

// selected is the result under the cursor, if any.
func (s *HistoryScreen) selected() (store.StoredResult, bool) {
	i := s.table.Cursor()
	if i < 0 || i >= len(s.results) {
		return store.StoredResult{}, false
	}
	return s.results[i], true
}

func (s *HistoryScreen) View(width, height int) string {
	msg := lipgloss.NewStyle().Width(width).Align(lipgloss.Center).MarginTop(2)
	switch {
	case s.errMsg != "":
		return msg.Foreground(theme.Error).Render("Error: " + s.errMsg)
	case !s.loaded:
		return msg.Foreground(theme.TextDim).Render("Loading results...")
	case len(s.results) == 0:
		return msg.Foreground(theme.TextDim).Italic(true).Render("No finished puzzles yet. Start one from the home screen!")
	}

	var info []string
	if r, ok := s.selected(); ok && s.showInfo {
		info = details(r)
	}
	s.table.SetHeight(max(height-len(info)-2, 3))

	parts := []string{s.table.View()}
	if len(info) > 0 {
		parts = append(parts, theme.Card.Render(strings.Join(info, "\n")))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func details(r store.StoredResult) []string {
	lines := make([]string, 0, len(analytics.AllMetrics())+1)
	for _, m := range analytics.AllMetrics() {
		v := r.Profile.Metrics.Get(m)
		lines = append(lines, lipgloss.NewStyle().Foreground(metricColor(v)).Render(fmt.Sprintf("%-21s %5.1f", m, v)))
	}
	return append(lines, theme.Hint.Render(fmt.Sprintf("%d correct · %d incorrect · %d hints · ended by %s",
		r.Counts.Correct, r.Counts.Incorrect, r.HintsUsed, r.Reason)))
}

func metricColor(v float64) color.Color {
	if v >= 80 {
		return theme.Success
	}
	if v >= 60 {
		return theme.Accent
	}
	return theme.Error
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
