package report

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/conceptlink/internal/game"
	"github.com/abhisek/conceptlink/internal/graph"
	"github.com/abhisek/conceptlink/internal/leads"
	"github.com/abhisek/conceptlink/internal/router"
	"github.com/abhisek/conceptlink/internal/screens/share"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, leads.Payload) error { return nil }
func (nopPublisher) Close() error                                 { return nil }

func completedSession(t *testing.T) *game.Session {
	t.Helper()
	m := &graph.Model{
		ID:      "supply-chain",
		Title:   "Supply chain shock",
		Version: "v1.0.0",
		Nodes: []graph.Node{
			{ID: "n1", Label: "Port closure"},
			{ID: "n2", Label: "Shipping delays"},
			{ID: "n3", Label: "Price increase"},
		},
		Solution: graph.SolutionSet{
			{Source: "n1", Target: "n2"},
			{Source: "n2", Target: "n3"},
		},
		WrongConnections: graph.WrongCatalog{
			{Source: "n1", Target: "n3", Explanation: "The effect runs through shipping."},
		},
	}
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s, err := game.New(m, game.WithClock(func() time.Time { return clock }))
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.AttemptConnection("n1", "n3")
	s.AttemptConnection("n1", "n2")
	if err := s.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return s
}

func TestReportScreen_Title(t *testing.T) {
	r := New(completedSession(t), nil, nil)
	if r.Title() != "Your Report" {
		t.Errorf("Title = %q, want %q", r.Title(), "Your Report")
	}
}

func TestReportScreen_Display(t *testing.T) {
	r := New(completedSession(t), nil, nil)
	view := r.View(100, 40)
	for _, want := range []string{"Session finished", "Completion score", "Pattern Recognition", "Mistakes to review", "Port closure → Price increase"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in report view", want)
		}
	}
}

func TestReportScreen_ActiveSessionShowsError(t *testing.T) {
	s, err := game.New(&graph.Model{
		ID: "m", Title: "t", Version: "v1.0.0",
		Nodes:    []graph.Node{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}},
		Solution: graph.SolutionSet{{Source: "a", Target: "b"}},
	})
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	r := New(s, nopPublisher{}, nil)
	if !strings.Contains(r.View(80, 24), "Error") {
		t.Error("expected error for a session that has not completed")
	}
	if r.canShare() {
		t.Error("sharing must be disabled without a profile")
	}
}

func TestReportScreen_EnterGoesHome(t *testing.T) {
	r := New(completedSession(t), nil, nil)
	_, cmd := r.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Errorf("expected PopToRootMsg, got %T", cmd())
	}
}

func TestReportScreen_ShareOnlyWithPublisher(t *testing.T) {
	r := New(completedSession(t), nil, nil)
	if _, cmd := r.Update(tea.KeyPressMsg{Code: 's', Text: "s"}); cmd != nil {
		t.Error("expected no share without a publisher")
	}
	if len(r.KeyHints()) != 1 {
		t.Errorf("KeyHints length = %d, want 1", len(r.KeyHints()))
	}

	r = New(completedSession(t), nopPublisher{}, nil)
	_, cmd := r.Update(tea.KeyPressMsg{Code: 's', Text: "s"})
	if cmd == nil {
		t.Fatal("expected share command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*share.ShareScreen); !ok {
		t.Errorf("expected share screen, got %T", msg.Screen)
	}
}
