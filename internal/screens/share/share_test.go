package share

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/conceptlink/internal/game"
	"github.com/abhisek/conceptlink/internal/graph"
	"github.com/abhisek/conceptlink/internal/leads"
	"github.com/abhisek/conceptlink/internal/router"
)

type recordingPublisher struct {
	payloads []leads.Payload
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, payload leads.Payload) error {
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func typeText(s *ShareScreen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

func completedSession(t *testing.T) *game.Session {
	t.Helper()
	m := &graph.Model{
		ID: "m1", Title: "Puzzle", Version: "v1.0.0",
		Nodes:    []graph.Node{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}},
		Solution: graph.SolutionSet{{Source: "a", Target: "b"}},
	}
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s, err := game.New(m, game.WithClock(func() time.Time { return clock }), game.WithSessionID("s-1"))
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res := s.AttemptConnection("a", "b"); !res.Completed {
		t.Fatal("expected the single connection to complete the game")
	}
	return s
}

// fillForm types a name and email and moves focus to the consent box.
func fillForm(s *ShareScreen) {
	s.Init()
	typeText(s, "Ada")
	s.Update(specialKey(tea.KeyTab))
	typeText(s, "ada@example.com")
	s.Update(specialKey(tea.KeyTab))
}

func TestShare_PublishesWithConsent(t *testing.T) {
	pub := &recordingPublisher{}
	s := New(completedSession(t), pub, nil)
	fillForm(s)

	s.Update(specialKey(tea.KeySpace))
	if !s.consent {
		t.Fatal("expected space to tick consent")
	}
	s.Update(specialKey(tea.KeyTab))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected publish command")
	}
	s.Update(cmd())

	if !s.Sent() {
		t.Fatalf("expected sent, err=%q", s.errMsg)
	}
	if len(pub.payloads) != 1 {
		t.Fatalf("payloads = %d, want 1", len(pub.payloads))
	}
	got := pub.payloads[0]
	if got.Learner.Name != "Ada" || got.Learner.Email != "ada@example.com" {
		t.Errorf("learner = %+v", got.Learner)
	}
	if got.SessionID != "s-1" {
		t.Errorf("session = %q, want s-1", got.SessionID)
	}

	_, cmd = s.Update(specialKey(tea.KeyEnter))
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected Enter after sending to pop")
	}
}

func TestShare_RequiresConsent(t *testing.T) {
	pub := &recordingPublisher{}
	s := New(completedSession(t), pub, nil)
	fillForm(s)
	s.Update(specialKey(tea.KeyTab))

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("expected no publish without consent")
	}
	if s.errMsg == "" {
		t.Error("expected a consent error")
	}
	if len(pub.payloads) != 0 {
		t.Error("nothing should be published")
	}
}

func TestShare_InvalidEmail(t *testing.T) {
	s := New(completedSession(t), &recordingPublisher{}, nil)
	s.Init()
	typeText(s, "Ada")
	s.Update(specialKey(tea.KeyTab))
	typeText(s, "not-an-email")
	s.Update(specialKey(tea.KeyTab))
	s.Update(specialKey(tea.KeySpace))
	s.Update(specialKey(tea.KeyTab))

	if _, cmd := s.Update(specialKey(tea.KeyEnter)); cmd != nil {
		t.Error("expected no publish with an invalid email")
	}
	if s.email.Err == "" {
		t.Error("expected an email error")
	}
}

func TestShare_PublishFailureAllowsRetry(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	s := New(completedSession(t), pub, nil)
	fillForm(s)
	s.Update(specialKey(tea.KeySpace))
	s.Update(specialKey(tea.KeyTab))

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	s.Update(cmd())
	if s.Sent() {
		t.Error("expected not sent after failure")
	}
	if s.sending {
		t.Error("expected the form to accept another attempt")
	}
	if s.errMsg == "" {
		t.Error("expected an error message")
	}
}

func TestShare_FocusCycles(t *testing.T) {
	s := New(completedSession(t), &recordingPublisher{}, nil)
	s.Init()
	s.Update(specialKey(tea.KeyUp))
	if s.focus != fieldSubmit {
		t.Errorf("focus = %d, want submit", s.focus)
	}
	s.Update(specialKey(tea.KeyDown))
	if s.focus != fieldName || !s.name.Focused() {
		t.Error("expected focus back on the name field")
	}
}
