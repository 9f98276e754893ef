package eventlog

import (
	"time"

	"github.com/abhisek/conceptlink/internal/graph"
)

// Log is an append-only, ordered sequence of events. The zero value is an
// empty log ready for use.
type Log struct {
	events []Event
}

// Append stamps the event with the next sequence number and a timestamp no
// earlier than the previous event's, then appends it. The stamped event is
// returned.
func (l *Log) Append(e Event, now time.Time) Event {
	e.Seq = int64(len(l.events) + 1)
	if n := len(l.events); n > 0 && now.Before(l.events[n-1].Timestamp) {
		now = l.events[n-1].Timestamp
	}
	e.Timestamp = now
	l.events = append(l.events, e)
	return e
}

// Len returns the number of events.
func (l *Log) Len() int { return len(l.events) }

// Events returns a deep copy of the events.
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	for i, e := range l.events {
		out[i] = e.Clone()
	}
	return out
}

// Last returns the most recent event.
func (l *Log) Last() (Event, bool) {
	if len(l.events) == 0 {
		return Event{}, false
	}
	return l.events[len(l.events)-1], true
}

// Counts are the derived connection totals of a log.
type Counts struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Neutral   int `json:"neutral"`
	Hints     int `json:"hints"`
	Inspected int `json:"inspected"`
}

// Attempts returns the number of connection_attempted events.
func (c Counts) Attempts() int { return c.Correct + c.Incorrect + c.Neutral }

// Tally recomputes the counts from scratch.
func Tally(events []Event) Counts {
	var c Counts
	for _, e := range events {
		switch e.Kind {
		case KindConnectionAttempted:
			switch e.Connection.Classification {
			case graph.Correct:
				c.Correct++
			case graph.Wrong:
				c.Incorrect++
			default:
				c.Neutral++
			}
		case KindHintUsed:
			c.Hints++
		case KindNodeInspected:
			c.Inspected++
		}
	}
	return c
}

// Solved returns the set of edges with at least one correct attempt.
func Solved(events []Event) map[graph.Edge]bool {
	solved := make(map[graph.Edge]bool)
	for _, e := range events {
		if e.Kind == KindConnectionAttempted && e.Connection.Classification == graph.Correct {
			solved[e.Connection.Edge()] = true
		}
	}
	return solved
}

// Hinted returns the set of edges already revealed by hints.
func Hinted(events []Event) map[graph.Edge]bool {
	hinted := make(map[graph.Edge]bool)
	for _, e := range events {
		if e.Kind == KindHintUsed {
			hinted[graph.Edge{Source: e.Hint.Source, Target: e.Hint.Target}] = true
		}
	}
	return hinted
}

// Counts recomputes the log's counts.
func (l *Log) Counts() Counts { return Tally(l.events) }

// IsSolved reports whether edge has a correct attempt in the log.
func (l *Log) IsSolved(edge graph.Edge) bool {
	for _, e := range l.events {
		if e.Kind == KindConnectionAttempted && e.Connection.Classification == graph.Correct && e.Connection.Edge() == edge {
			return true
		}
	}
	return false
}
