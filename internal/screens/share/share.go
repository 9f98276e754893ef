// Package share collects the learner's contact details and consent and
// publishes their results for follow-up.
package share

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/conceptlink/internal/game"
	"github.com/abhisek/conceptlink/internal/leads"
	"github.com/abhisek/conceptlink/internal/router"
	"github.com/abhisek/conceptlink/internal/screen"
	"github.com/abhisek/conceptlink/internal/ui/components"
	"github.com/abhisek/conceptlink/internal/ui/layout"
	"github.com/abhisek/conceptlink/internal/ui/theme"
)

// PublishTimeout bounds a single share attempt.
const PublishTimeout = 10 * time.Second

const (
	fieldName = iota
	fieldEmail
	fieldConsent
	fieldSubmit
	fieldCount
)

// sharedMsg reports the outcome of a publish.
type sharedMsg struct {
	Err error
}

// ShareScreen is the lead capture form.
type ShareScreen struct {
	session   *game.Session
	publisher leads.Publisher
	logger    *zap.Logger

	name    components.TextInput
	email   components.TextInput
	consent bool
	focus   int

	sending bool
	sent    bool
	errMsg  string
}

var _ screen.Screen = (*ShareScreen)(nil)
var _ screen.KeyHintProvider = (*ShareScreen)(nil)

// New creates a share form for a completed session.
func New(s *game.Session, publisher leads.Publisher, logger *zap.Logger) *ShareScreen {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShareScreen{
		session:   s,
		publisher: publisher,
		logger:    logger.Named("share"),
		name:      components.NewTextInput("Name", "Ada Lovelace", 80),
		email:     components.NewTextInput("Email", "ada@example.com", 120),
	}
}

func (s *ShareScreen) Init() tea.Cmd {
	return s.name.Focus()
}

func (s *ShareScreen) Title() string {
	return "Share Results"
}

// Sent reports whether the results were published.
func (s *ShareScreen) Sent() bool {
	return s.sent
}

func (s *ShareScreen) KeyHints() []layout.KeyHint {
	if s.sent {
		return []layout.KeyHint{{Key: "Enter", Description: "Done"}}
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Space", Description: "Toggle consent"},
		{Key: "Enter", Description: "Send"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ShareScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sharedMsg:
		s.sending = false
		if msg.Err != nil {
			s.logger.Warn("failed to share results", zap.Error(msg.Err))
			s.errMsg = "Could not send your results. Please try again."
			return s, nil
		}
		s.sent = true
		s.errMsg = ""
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, s.updateFocused(msg)
}

func (s *ShareScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.sent {
		if msg.String() == "enter" {
			return s, router.Back
		}
		return s, nil
	}
	if s.sending {
		return s, nil
	}

	switch msg.String() {
	case "tab", "down":
		return s, s.setFocus(s.focus + 1)
	case "shift+tab", "up":
		return s, s.setFocus(s.focus - 1)
	case "enter":
		switch s.focus {
		case fieldConsent:
			s.consent = !s.consent
			return s, nil
		case fieldSubmit:
			return s, s.submit()
		}
		return s, s.setFocus(s.focus + 1)
	case "space":
		if s.focus == fieldConsent {
			s.consent = !s.consent
			return s, nil
		}
	}
	return s, s.updateFocused(msg)
}

func (s *ShareScreen) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch s.focus {
	case fieldName:
		s.name, cmd = s.name.Update(msg)
	case fieldEmail:
		s.email, cmd = s.email.Update(msg)
	}
	return cmd
}

func (s *ShareScreen) setFocus(i int) tea.Cmd {
	s.focus = (i + fieldCount) % fieldCount
	s.name.Blur()
	s.email.Blur()
	switch s.focus {
	case fieldName:
		return s.name.Focus()
	case fieldEmail:
		return s.email.Focus()
	}
	return nil
}

func (s *ShareScreen) learner() leads.Learner {
	return leads.Learner{
		Name:    strings.TrimSpace(s.name.Value()),
		Email:   strings.TrimSpace(s.email.Value()),
		Consent: s.consent,
	}
}

func (s *ShareScreen) submit() tea.Cmd {
	s.name.Err, s.email.Err, s.errMsg = "", "", ""

	payload, err := leads.NewPayload(s.learner(), s.session)
	if err != nil {
		switch {
		case errors.Is(err, leads.ErrConsentRequired):
			s.errMsg = "Please tick the consent box to share your results."
		case s.learner().Name == "":
			s.name.Err = "required"
		default:
			s.email.Err = "invalid email"
		}
		return nil
	}

	s.sending = true
	publisher := s.publisher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()
		return sharedMsg{Err: publisher.Publish(ctx, payload)}
	}
}

func (s *ShareScreen) View(width, height int) string {
	cw := components.PanelWidth(width)

	if s.sent {
		msg := theme.Correct.Render("Thanks! Your results are on their way.") + "\n\n" +
			theme.Hint.Render("Press Enter to return to your report.")
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			components.Card(msg, cw))
	}

	var b strings.Builder
	b.WriteString(theme.Body.Render("Send your critical-thinking profile to receive personalised follow-up."))
	b.WriteString("\n\n")
	b.WriteString(s.name.View())
	b.WriteString("\n\n")
	b.WriteString(s.email.View())
	b.WriteString("\n\n")

	box := "[ ]"
	if s.consent {
		box = "[x]"
	}
	consentStyle := theme.Unselected
	if s.focus == fieldConsent {
		consentStyle = theme.Selected
	}
	b.WriteString(consentStyle.Render(box + " I agree to share my results and contact details"))
	b.WriteString("\n\n")

	send := components.Button("SEND", components.FocusIf(s.focus == fieldSubmit), 18)
	if s.sending {
		send = components.Button("SENDING...", components.ButtonDisabled, 18)
	}
	b.WriteString(send)

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Card.Width(cw).Padding(1, 2).Render(b.String()))
}
