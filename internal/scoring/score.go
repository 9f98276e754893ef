// Package scoring computes the running game score from the interaction
// log and the final 0-100 completion score.
package scoring

import (
	"math"
	"time"

	"github.com/abhisek/conceptlink/internal/eventlog"
	"github.com/abhisek/conceptlink/internal/graph"
)

// Delta returns the unclamped score change caused by a single event.
func Delta(e eventlog.Event, m *graph.Model, cfg Config) int {
	switch e.Kind {
	case eventlog.KindConnectionAttempted:
		edge := e.Connection.Edge()
		switch e.Connection.Classification {
		case graph.Correct:
			if cfg.Mode == ModeWeighted {
				if s, ok := m.SolutionFor(edge); ok && s.Points > 0 {
					return s.Points
				}
			}
			return cfg.CorrectPoints
		case graph.Wrong:
			if cfg.Mode == ModeWeighted {
				if w, ok := m.WrongFor(edge); ok && w.Penalty > 0 {
					return -w.Penalty
				}
			}
			return -cfg.WrongPenalty
		}
	case eventlog.KindHintUsed:
		return -cfg.HintPenalty
	}
	return 0
}

// Apply returns the score after e, clamped at zero.
func Apply(score int, e eventlog.Event, m *graph.Model, cfg Config) int {
	score += Delta(e, m, cfg)
	if score < 0 {
		return 0
	}
	return score
}

// Replay recomputes the score from an entire log. The result always equals
// the running score kept by a session over the same log.
func Replay(events []eventlog.Event, m *graph.Model, cfg Config) int {
	score := 0
	for _, e := range events {
		score = Apply(score, e, m, cfg)
	}
	return score
}

// CompletionInput carries the raw counters the completion score is built from.
type CompletionInput struct {
	Correct   int
	Incorrect int
	Required  int
	Elapsed   time.Duration
	HintsUsed int
	MaxHints  int
}

// Components are the individual normalized [0,1] terms of a completion score.
type Components struct {
	Accuracy         float64 `json:"accuracy"`
	RequiredCoverage float64 `json:"required_coverage"`
	TimeBonus        float64 `json:"time_bonus"`
	Efficiency       float64 `json:"efficiency"`
}

// Breakdown computes the normalized completion score terms.
func Breakdown(in CompletionInput, cfg Config) Components {
	var c Components
	if attempts := in.Correct + in.Incorrect; attempts > 0 {
		c.Accuracy = float64(in.Correct) / float64(attempts)
	}
	if in.Required > 0 {
		c.RequiredCoverage = clamp01(float64(in.Correct) / float64(in.Required))
	} else {
		c.RequiredCoverage = c.Accuracy
	}
	switch {
	case in.Elapsed <= cfg.TimeBonusThreshold:
		c.TimeBonus = 1
	default:
		c.TimeBonus = float64(cfg.TimeBonusThreshold) / float64(in.Elapsed)
	}
	if in.MaxHints > 0 {
		c.Efficiency = clamp01(1 - float64(in.HintsUsed)/float64(in.MaxHints))
	} else {
		c.Efficiency = 1
	}
	return c
}

// CompletionScore returns the weighted completion score in [0,100].
func CompletionScore(in CompletionInput, cfg Config) int {
	c := Breakdown(in, cfg)
	w := cfg.Weights
	sum := c.Accuracy*w.Accuracy +
		c.RequiredCoverage*w.RequiredCoverage +
		c.TimeBonus*w.TimeBonus +
		c.Efficiency*w.Efficiency
	score := int(math.Round(sum * 100))
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
