// Package persist forwards session changes to durable sinks without ever
// blocking the session that produced them.
package persist

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/conceptlink/internal/eventlog"
	"github.com/abhisek/conceptlink/internal/game"
)

// Kind discriminates persisted records.
type Kind string

const (
	KindInteraction Kind = "interaction"
	KindAnalytics   Kind = "analytics"
)

// Record is one unit handed to sinks. Interaction records carry Event;
// analytics records carry Summary.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	Kind      Kind            `json:"kind"`
	SessionID string          `json:"session_id"`
	ModelID   string          `json:"model_id"`
	At        time.Time       `json:"at"`
	Score     int             `json:"score"`
	Event     *eventlog.Event `json:"event,omitempty"`
	Summary   *game.Summary   `json:"summary,omitempty"`
}

// FromChange converts a session change into a record. Session starts
// produce no record.
func FromChange(c game.Change) (Record, bool) {
	rec := Record{
		ID:        uuid.New(),
		SessionID: c.SessionID,
		ModelID:   c.ModelID,
		At:        c.At,
		Score:     c.Score,
	}
	switch c.Kind {
	case game.ChangeEvent:
		if c.Event == nil {
			return Record{}, false
		}
		rec.Kind = KindInteraction
		rec.Event = c.Event
	case game.ChangeCompleted:
		if c.Summary == nil {
			return Record{}, false
		}
		rec.Kind = KindAnalytics
		rec.Summary = c.Summary
	default:
		return Record{}, false
	}
	return rec, true
}

// Sink is a destination for records. Write is called from the recorder's
// drain goroutine, concurrently across sinks but never concurrently for the
// same sink.
type Sink interface {
	Name() string
	Write(ctx context.Context, rec Record) error
	Close() error
}
