// Package eventlog defines the append-only interaction log that scoring,
// hints, completion and analytics are all computed from.
package eventlog

import (
	"fmt"
	"time"

	"github.com/abhisek/conceptlink/internal/graph"
)

// Kind discriminates interaction events.
type Kind string

const (
	KindConnectionAttempted Kind = "connection_attempted"
	KindNodeInspected       Kind = "node_inspected"
	KindHintUsed            Kind = "hint_used"
)

// Event is one learner action. Exactly one of the payload pointers is set,
// matching Kind.
type Event struct {
	Seq       int64     `json:"seq"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	Connection *Connection `json:"connection,omitempty"`
	Inspection *Inspection `json:"inspection,omitempty"`
	Hint       *Hint       `json:"hint,omitempty"`
}

// Connection is the payload of a connection_attempted event.
type Connection struct {
	Source         string               `json:"source"`
	Target         string               `json:"target"`
	Classification graph.Classification `json:"classification"`
}

// Edge returns the attempted edge.
func (c Connection) Edge() graph.Edge { return graph.Edge{Source: c.Source, Target: c.Target} }

// Inspection is the payload of a node_inspected event.
type Inspection struct {
	NodeID string `json:"node_id"`
}

// Hint is the payload of a hint_used event. Source and Target name the
// revealed solution edge.
type Hint struct {
	Index  int    `json:"index"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Clone returns a copy of e that shares no payload memory with it.
func (e Event) Clone() Event {
	if e.Connection != nil {
		c := *e.Connection
		e.Connection = &c
	}
	if e.Inspection != nil {
		i := *e.Inspection
		e.Inspection = &i
	}
	if e.Hint != nil {
		h := *e.Hint
		e.Hint = &h
	}
	return e
}

// Validate checks that the payload matches the kind.
func (e Event) Validate() error {
	switch e.Kind {
	case KindConnectionAttempted:
		if e.Connection == nil || e.Inspection != nil || e.Hint != nil {
			return fmt.Errorf("event %d: %s requires only a connection payload", e.Seq, e.Kind)
		}
	case KindNodeInspected:
		if e.Inspection == nil || e.Connection != nil || e.Hint != nil {
			return fmt.Errorf("event %d: %s requires only an inspection payload", e.Seq, e.Kind)
		}
	case KindHintUsed:
		if e.Hint == nil || e.Connection != nil || e.Inspection != nil {
			return fmt.Errorf("event %d: %s requires only a hint payload", e.Seq, e.Kind)
		}
	default:
		return fmt.Errorf("event %d: unknown kind %q", e.Seq, e.Kind)
	}
	return nil
}

// String renders the event for logs and the replay output.
func (e Event) String() string {
	switch e.Kind {
	case KindConnectionAttempted:
		return fmt.Sprintf("#%d connect %s->%s (%s)", e.Seq, e.Connection.Source, e.Connection.Target, e.Connection.Classification)
	case KindNodeInspected:
		return fmt.Sprintf("#%d inspect %s", e.Seq, e.Inspection.NodeID)
	case KindHintUsed:
		return fmt.Sprintf("#%d hint %d %s->%s", e.Seq, e.Hint.Index, e.Hint.Source, e.Hint.Target)
	}
	return fmt.Sprintf("#%d %s", e.Seq, e.Kind)
}
