package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/conceptlink/internal/game"
	"github.com/abhisek/conceptlink/internal/graph"
	"github.com/abhisek/conceptlink/internal/leads"
	"github.com/abhisek/conceptlink/internal/router"
	"github.com/abhisek/conceptlink/internal/screen"
	"github.com/abhisek/conceptlink/internal/screens/board"
	"github.com/abhisek/conceptlink/internal/screens/history"
	"github.com/abhisek/conceptlink/internal/store"
	"github.com/abhisek/conceptlink/internal/ui/components"
	"github.com/abhisek/conceptlink/internal/ui/layout"
)

// Deps are the collaborators the home screen hands to the screens it opens.
// Only Model is required.
type Deps struct {
	Model      *graph.Model
	GameConfig game.Config
	Results    history.ResultLister
	Recorder   game.Observer
	Leads      leads.Publisher
	Logger     *zap.Logger
}

type puzzleInfo struct {
	Title  string
	Nodes  int
	Links  int
	Best   int
	Played int
}

type resultsLoadedMsg struct {
	Best   int
	Played int
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	deps       Deps
	logger     *zap.Logger
	menu   components.Menu
	info   puzzleInfo
	notice string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen for one puzzle.
func New(deps Deps) *HomeScreen {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &HomeScreen{
		deps:   deps,
		logger: logger,
		info: puzzleInfo{
			Title: deps.Model.Title,
			Nodes: len(deps.Model.Nodes),
			Links: len(deps.Model.Solution),
		},
	}

	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "START PUZZLE", Action: h.startPuzzle},
		{Label: "PAST RESULTS", Disabled: deps.Results == nil, Action: func() tea.Cmd {
			return router.Open(history.New(deps.Results, deps.Model.ID))
		}},
		{Label: "EXIT", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadResults()
}

// Resume reloads the best result after returning from a game.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.loadResults()
}

func (h *HomeScreen) Title() string {
	return "Home"
}

// startPuzzle builds a fresh session and opens the board for it.
func (h *HomeScreen) startPuzzle() tea.Cmd {
	opts := []game.Option{game.WithConfig(h.deps.GameConfig)}
	if h.deps.Recorder != nil {
		opts = append(opts, game.WithObserver(h.deps.Recorder))
	}
	s, err := game.New(h.deps.Model, opts...)
	if err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		h.notice = "Could not start the puzzle: " + err.Error()
		return nil
	}
	h.notice = ""
	next := board.New(s, board.Options{Leads: h.deps.Leads, Logger: h.logger})
	return router.Open(next)
}

func (h *HomeScreen) loadResults() tea.Cmd {
	if h.deps.Results == nil {
		return nil
	}
	repo, modelID, logger := h.deps.Results, h.deps.Model.ID, h.logger
	return func() tea.Msg {
		results, err := repo.RecentResults(context.Background(), store.QueryOpts{})
		if err != nil {
			logger.Warn("failed to load past results", zap.Error(err))
			return resultsLoadedMsg{}
		}
		var msg resultsLoadedMsg
		for _, r := range results {
			if r.ModelID != modelID {
				continue
			}
			msg.Played++
			msg.Best = max(msg.Best, r.CompletionScore)
		}
		return msg
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resultsLoadedMsg:
		h.info.Best = msg.Best
		h.info.Played = msg.Played
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// KeyHints lists the menu's own bindings.
func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return h.menu.Hints()
}

func (h *HomeScreen) View(width, height int) string {
	// The title art and bordered buttons need about 22 rows.
	compact := height < 22 || width < 100
	cw := components.PanelWidth(width)

	sections := []string{
		renderTitle(cw, compact),
		renderPuzzleCard(h.info, cw, compact),
		renderMenu(h.menu, cw, compact),
	}
	if h.notice != "" {
		sections = append(sections, renderNotice(h.notice, cw))
	}
	return components.Cabinet(strings.Join(sections, "\n\n"), width, height)
}
