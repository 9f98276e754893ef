// Package hints decides which solution edge a hint reveals.
package hints

import (
	"github.com/abhisek/conceptlink/internal/eventlog"
	"github.com/abhisek/conceptlink/internal/graph"
)

// DefaultMaxHints is the number of hints a learner gets per session.
const DefaultMaxHints = 3

// Status is the outcome of a hint request.
type Status string

const (
	Granted         Status = "granted"
	Exhausted       Status = "exhausted"
	NothingToReveal Status = "nothing_to_reveal"
)

// Result describes a hint request. Entry and Text are set only when
// Status is Granted.
type Result struct {
	Status Status
	Index  int
	Entry  graph.SolutionEntry
	Text   string
	Repeat bool
}

// Dispenser hands out a bounded number of hints.
type Dispenser struct {
	MaxHints int
	Texts    []string
}

// New creates a dispenser with authored hint texts.
func New(maxHints int, texts []string) *Dispenser {
	if maxHints < 0 {
		maxHints = 0
	}
	return &Dispenser{MaxHints: maxHints, Texts: texts}
}

// Remaining returns how many hints are still available given the log.
func (d *Dispenser) Remaining(events []eventlog.Event) int {
	left := d.MaxHints - eventlog.Tally(events).Hints
	if left < 0 {
		return 0
	}
	return left
}

// Next selects the next hint without recording it. The first unsolved
// entry in solution order that has not been hinted wins; once every
// unsolved entry has been hinted, the first unsolved entry is repeated.
// Solved edges are never revealed.
func (d *Dispenser) Next(events []eventlog.Event, solution graph.SolutionSet) Result {
	used := eventlog.Tally(events).Hints
	if used >= d.MaxHints {
		return Result{Status: Exhausted}
	}

	solved := eventlog.Solved(events)
	hinted := eventlog.Hinted(events)

	first := -1
	for i, s := range solution {
		if solved[s.Edge()] {
			continue
		}
		if first < 0 {
			first = i
		}
		if !hinted[s.Edge()] {
			return d.grant(used, i, solution[i], false)
		}
	}
	if first < 0 {
		return Result{Status: NothingToReveal}
	}
	return d.grant(used, first, solution[first], true)
}

func (d *Dispenser) grant(index, entry int, s graph.SolutionEntry, repeat bool) Result {
	text := s.Rationale
	if entry < len(d.Texts) && d.Texts[entry] != "" {
		text = d.Texts[entry]
	}
	return Result{
		Status: Granted,
		Index:  index,
		Entry:  s,
		Text:   text,
		Repeat: repeat,
	}
}
