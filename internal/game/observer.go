package game

import (
	"time"

	"github.com/abhisek/conceptlink/internal/analytics"
	"github.com/abhisek/conceptlink/internal/eventlog"
)

// ChangeKind discriminates session change notifications.
type ChangeKind string

const (
	ChangeStarted   ChangeKind = "started"
	ChangeEvent     ChangeKind = "event"
	ChangeCompleted ChangeKind = "completed"
)

// Change is delivered to observers after every state transition. Event is
// set for ChangeEvent; Summary is set for ChangeCompleted. Both are copies
// the observer may keep.
type Change struct {
	Kind      ChangeKind
	SessionID string
	ModelID   string
	Phase     Phase
	Score     int
	At        time.Time
	Event     *eventlog.Event
	Summary   *Summary
}

// Summary is the final record of a completed session.
type Summary struct {
	Reason          CompletionReason  `json:"reason"`
	StartedAt       time.Time         `json:"started_at"`
	CompletedAt     time.Time         `json:"completed_at"`
	ElapsedSeconds  float64           `json:"elapsed_seconds"`
	Score           int               `json:"score"`
	Counts          eventlog.Counts   `json:"counts"`
	HintsUsed       int               `json:"hints_used"`
	Interactions    int               `json:"interactions"`
	CompletionScore int               `json:"completion_score"`
	Profile         analytics.Profile `json:"profile"`
	History         []eventlog.Event  `json:"history"`
}

// Observer receives session changes. Observe is called synchronously on the
// goroutine driving the session and must not block.
type Observer interface {
	Observe(Change)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Change)

// Observe calls f(c).
func (f ObserverFunc) Observe(c Change) { f(c) }
