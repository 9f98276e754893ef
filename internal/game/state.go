package game

import (
	"time"

	"github.com/abhisek/conceptlink/internal/eventlog"
	"github.com/abhisek/conceptlink/internal/graph"
)

// Phase is the session lifecycle position.
type Phase string

const (
	PhaseInstructions Phase = "instructions"
	PhaseActive       Phase = "active"
	PhaseCompleted    Phase = "completed"
)

// CompletionReason records how a session reached PhaseCompleted.
type CompletionReason string

const (
	CompletedByThreshold CompletionReason = "threshold"
	CompletedByFinish    CompletionReason = "finish"
)

// State is a serialisable snapshot of a session. Counts always equal
// eventlog.Tally(Log).
type State struct {
	SessionID        string           `json:"session_id"`
	ModelID          string           `json:"model_id"`
	Phase            Phase            `json:"phase"`
	StartedAt        time.Time        `json:"started_at,omitzero"`
	CompletedAt      time.Time        `json:"completed_at,omitzero"`
	CompletedBy      CompletionReason `json:"completed_by,omitempty"`
	Score            int              `json:"score"`
	HintsUsed        int              `json:"hints_used"`
	HintsRemaining   int              `json:"hints_remaining"`
	Required         int              `json:"required"`
	RequiredToFinish int              `json:"required_to_finish"`
	Counts           eventlog.Counts  `json:"counts"`
	Nodes            []graph.Node     `json:"nodes"`
	Log              []eventlog.Event `json:"log"`
}

// Elapsed returns the play time. For an active session it is measured up
// to now.
func (s State) Elapsed(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	end := s.CompletedAt
	if end.IsZero() {
		end = now
	}
	if end.Before(s.StartedAt) {
		return 0
	}
	return end.Sub(s.StartedAt)
}

// Solved returns the solution edges the learner has made.
func (s State) Solved() map[graph.Edge]bool {
	return eventlog.Solved(s.Log)
}
