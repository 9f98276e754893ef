// Package board is the interactive puzzle screen: the learner walks the
// concept nodes, picks a source and a target to propose a connection, and
// may inspect nodes, take hints or finish early.
package board

import (
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/conceptlink/internal/game"
	"github.com/abhisek/conceptlink/internal/graph"
	"github.com/abhisek/conceptlink/internal/hints"
	"github.com/abhisek/conceptlink/internal/leads"
	"github.com/abhisek/conceptlink/internal/router"
	"github.com/abhisek/conceptlink/internal/screen"
	"github.com/abhisek/conceptlink/internal/screens/report"
	"github.com/abhisek/conceptlink/internal/ui/layout"
)

// Tone colors the status line.
type Tone int

const (
	ToneInfo Tone = iota
	ToneGood
	ToneBad
	ToneNeutral
)

type status struct {
	text string
	tone Tone
}

// Options are the board's collaborators. All fields are optional.
type Options struct {
	Leads  leads.Publisher
	Logger *zap.Logger
	Now    func() time.Time
}

// BoardScreen drives one game.Session.
type BoardScreen struct {
	session *game.Session
	opts    Options
	logger  *zap.Logger

	cursor     int
	source     string
	confirming bool
	status     status
	now        time.Time
}

var _ screen.Screen = (*BoardScreen)(nil)
var _ screen.KeyHintProvider = (*BoardScreen)(nil)
var _ screen.HeaderStatsProvider = (*BoardScreen)(nil)
var _ screen.BackInterceptor = (*BoardScreen)(nil)

// New creates a board for a session in the Instructions phase.
func New(s *game.Session, opts Options) *BoardScreen {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &BoardScreen{
		session: s,
		opts:    opts,
		logger:  logger.Named("board").With(zap.String("session_id", s.ID())),
	}
	b.now = opts.Now()
	b.cursor = b.firstPlayable()
	return b
}

func (b *BoardScreen) Init() tea.Cmd {
	return nil
}

func (b *BoardScreen) Title() string {
	return b.session.Model().Title
}

// Session returns the session the board drives.
func (b *BoardScreen) Session() *game.Session {
	return b.session
}

func (b *BoardScreen) HeaderStats() *layout.HeaderStats {
	if b.session.Phase() == game.PhaseInstructions {
		return nil
	}
	st := b.session.State()
	return &layout.HeaderStats{Score: st.Score, HintsRemaining: st.HintsRemaining}
}

func (b *BoardScreen) InterceptsBack() bool {
	return b.session.Phase() == game.PhaseActive
}

func (b *BoardScreen) KeyHints() []layout.KeyHint {
	switch {
	case b.session.Phase() == game.PhaseInstructions:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	case b.confirming:
		return []layout.KeyHint{
			{Key: "Y", Description: "Finish now"},
			{Key: "N", Description: "Keep going"},
		}
	case b.source != "":
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Move"},
			{Key: "Enter", Description: "Connect to"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Enter", Description: "Pick source"},
		{Key: "I", Description: "Inspect"},
		{Key: "H", Description: "Hint"},
		{Key: "F", Description: "Finish"},
	}
}

func (b *BoardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if b.session.Phase() != game.PhaseActive {
			return b, nil
		}
		b.now = time.Time(msg)
		return b, b.tick()
	case tea.KeyMsg:
		return b.handleKey(msg.String())
	}
	return b, nil
}

func (b *BoardScreen) handleKey(key string) (screen.Screen, tea.Cmd) {
	switch b.session.Phase() {
	case game.PhaseInstructions:
		if key == "enter" || key == "space" {
			return b.start()
		}
		return b, nil
	case game.PhaseCompleted:
		return b, b.showReport()
	}

	if b.confirming {
		switch key {
		case "y", "Y":
			b.confirming = false
			if err := b.session.Finish(); err != nil {
				b.setStatus(err.Error(), ToneBad)
				return b, nil
			}
			return b, b.showReport()
		case "n", "N", "esc":
			b.confirming = false
		}
		return b, nil
	}

	switch key {
	case "up", "k":
		b.move(-1)
	case "down", "j":
		b.move(1)
	case "enter", "space":
		return b.pick()
	case "esc":
		if b.source != "" {
			b.source = ""
			b.setStatus("Selection cleared.", ToneInfo)
			return b, nil
		}
		b.confirming = true
	case "i", "I":
		b.inspect()
	case "h", "H":
		b.hint()
	case "f", "F":
		b.confirming = true
	}
	return b, nil
}

func (b *BoardScreen) start() (screen.Screen, tea.Cmd) {
	if err := b.session.Start(); err != nil {
		b.setStatus(err.Error(), ToneBad)
		return b, nil
	}
	b.now = b.opts.Now()
	b.logger.Debug("session started", zap.String("model_id", b.session.Model().ID))
	b.setStatus("Pick a source concept, then the concept it leads to.", ToneInfo)
	return b, b.tick()
}

func (b *BoardScreen) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (b *BoardScreen) nodes() []graph.Node {
	return b.session.State().Nodes
}

func (b *BoardScreen) firstPlayable() int {
	for i, n := range b.nodes() {
		if !n.Locked {
			return i
		}
	}
	return 0
}

func (b *BoardScreen) move(delta int) {
	nodes := b.nodes()
	if len(nodes) == 0 {
		return
	}
	b.cursor = (b.cursor + delta + len(nodes)) % len(nodes)
}

func (b *BoardScreen) current() (graph.Node, bool) {
	nodes := b.nodes()
	if b.cursor < 0 || b.cursor >= len(nodes) {
		return graph.Node{}, false
	}
	return nodes[b.cursor], true
}

func (b *BoardScreen) pick() (screen.Screen, tea.Cmd) {
	node, ok := b.current()
	if !ok {
		return b, nil
	}
	if node.Locked {
		b.setStatus(fmt.Sprintf("%q is locked.", node.Label), ToneBad)
		return b, nil
	}
	if b.source == "" {
		b.source = node.ID
		b.setStatus(fmt.Sprintf("From %q … now pick where it leads.", node.Label), ToneInfo)
		return b, nil
	}
	if b.source == node.ID {
		b.source = ""
		b.setStatus("Selection cleared.", ToneInfo)
		return b, nil
	}

	source := b.source
	b.source = ""
	res := b.session.AttemptConnection(source, node.ID)
	b.logger.Debug("connection attempted",
		zap.String("source", source),
		zap.String("target", node.ID),
		zap.String("status", string(res.Status)),
		zap.String("classification", string(res.Classification)),
		zap.Int("score", res.Score))

	switch res.Status {
	case game.Rejected:
		b.setStatus(rejectionText(res.Err), ToneBad)
	case game.AlreadySolved:
		b.setStatus("You already made that connection.", ToneInfo)
	case game.Accepted:
		b.setStatus(attemptText(res), attemptTone(res.Classification))
	}
	if res.Completed {
		return b, b.showReport()
	}
	return b, nil
}

func (b *BoardScreen) inspect() {
	node, ok := b.current()
	if !ok {
		return
	}
	if err := b.session.InspectNode(node.ID); err != nil {
		b.setStatus(rejectionText(err), ToneBad)
		return
	}
	kind := string(node.Kind)
	if kind == "" {
		kind = "concept"
	}
	b.setStatus(fmt.Sprintf("%s is a %s node.", node.Label, kind), ToneInfo)
}

func (b *BoardScreen) hint() {
	res := b.session.RequestHint()
	switch res.Status {
	case hints.Granted:
		text := res.Text
		if text == "" {
			text = fmt.Sprintf("Try connecting %s to %s.", b.label(res.Edge.Source), b.label(res.Edge.Target))
		}
		if res.Repeat {
			text = "Again: " + text
		}
		b.setStatus(fmt.Sprintf("Hint: %s (%d left)", text, res.Remaining), ToneNeutral)
	case hints.Exhausted:
		b.setStatus("No hints left.", ToneBad)
	case hints.NothingToReveal:
		b.setStatus("Every required connection is already made.", ToneInfo)
	default:
		b.setStatus(rejectionText(res.Err), ToneBad)
	}
}

func (b *BoardScreen) showReport() tea.Cmd {
	next := report.New(b.session, b.opts.Leads, b.logger)
	return router.Swap(next)
}

func (b *BoardScreen) setStatus(text string, tone Tone) {
	b.status = status{text: text, tone: tone}
}

func (b *BoardScreen) label(id string) string {
	if n, ok := b.session.Model().Node(id); ok {
		return n.Label
	}
	return id
}

func attemptText(res game.AttemptResult) string {
	var head string
	switch res.Classification {
	case graph.Correct:
		head = fmt.Sprintf("Correct! +%d", res.Delta)
	case graph.Wrong:
		head = "Not quite."
		if res.Delta != 0 {
			head += fmt.Sprintf(" %d", res.Delta)
		}
	default:
		head = "That link is plausible but not required."
	}
	if res.Feedback != "" {
		return head + "  " + res.Feedback
	}
	return head
}

func attemptTone(c graph.Classification) Tone {
	switch c {
	case graph.Correct:
		return ToneGood
	case graph.Wrong:
		return ToneBad
	}
	return ToneNeutral
}

func rejectionText(err error) string {
	switch {
	case err == nil:
		return "That move is not allowed."
	case errors.Is(err, game.ErrNodeLocked):
		return "That concept is locked."
	case errors.Is(err, game.ErrSelfConnection):
		return "A concept cannot connect to itself."
	case errors.Is(err, game.ErrUnknownNode):
		return "Unknown concept."
	}
	return err.Error()
}
