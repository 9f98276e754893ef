package app

import (
	"errors"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/conceptlink/internal/game"
	"github.com/abhisek/conceptlink/internal/graph"
	"github.com/abhisek/conceptlink/internal/leads"
	"github.com/abhisek/conceptlink/internal/router"
	"github.com/abhisek/conceptlink/internal/screen"
	"github.com/abhisek/conceptlink/internal/screens/history"
	"github.com/abhisek/conceptlink/internal/screens/home"
	"github.com/abhisek/conceptlink/internal/ui/layout"
)

// Options configure the interactive game. Model is required; the rest
// may be left zero.
type Options struct {
	Model      *graph.Model
	GameConfig game.Config
	Results    history.ResultLister
	Recorder   game.Observer
	Leads      leads.Publisher
	Logger     *zap.Logger
}

// Keys handled before the active screen sees them.
var (
	quitKey = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("Ctrl+C", "Quit"))
	backKey = key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Back"))
)

// AppModel is the root Bubble Tea model: a screen stack inside a frame.
type AppModel struct {
	router        *router.Router
	width, height int
}

func newAppModel(opts Options) AppModel {
	root := home.New(home.Deps{
		Model:      opts.Model,
		GameConfig: opts.GameConfig,
		Results:    opts.Results,
		Recorder:   opts.Recorder,
		Leads:      opts.Leads,
		Logger:     opts.Logger,
	})
	return AppModel{router: router.New(root, opts.Logger)}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, quitKey):
			return m, tea.Quit
		case key.Matches(msg, backKey) && !interceptsBack(m.router.Active()):
			// Esc on the root screen does nothing rather than quitting.
			if m.router.Depth() == 1 {
				return m, nil
			}
			return m, router.Back
		}
	}
	return m, m.router.Update(msg)
}

func interceptsBack(s screen.Screen) bool {
	bi, ok := s.(screen.BackInterceptor)
	return ok && bi.InterceptsBack()
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	switch {
	case m.width == 0 || m.height == 0:
	case layout.IsTooSmall(m.width, m.height):
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
	default:
		v.SetContent(m.frame())
	}
	return v
}

func (m AppModel) frame() string {
	active := m.router.Active()

	var stats *layout.HeaderStats
	if hp, ok := active.(screen.HeaderStatsProvider); ok {
		stats = hp.HeaderStats()
	}
	header := layout.RenderHeader(active.Title(), stats, m.width)
	footer := layout.RenderFooter(m.hints(active), m.width)

	body := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return layout.RenderFrame(header, m.router.View(m.width, body), footer, m.width, m.height)
}

// hints are the active screen's own hints, or Back below the root, always
// followed by Quit.
func (m AppModel) hints(active screen.Screen) []layout.KeyHint {
	var hints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		hints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		hints = []layout.KeyHint{helpHint(backKey)}
	}
	return append(hints, helpHint(quitKey))
}

func helpHint(b key.Binding) layout.KeyHint {
	h := b.Help()
	return layout.KeyHint{Key: h.Key, Description: h.Desc}
}

// Run starts the Bubble Tea program and blocks until the player quits.
func Run(opts Options) error {
	if opts.Model == nil {
		return errors.New("app: a game model is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		opts.Logger.Error("tui exited with error", zap.Error(err))
		return err
	}
	return nil
}
