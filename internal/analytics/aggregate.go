package analytics

import (
	"math"

	"github.com/abhisek/conceptlink/internal/eventlog"
	"github.com/abhisek/conceptlink/internal/graph"
)

// DefaultTargetRate is the reference pace in correct connections per minute.
const DefaultTargetRate = 2.0

// Config holds analytics settings.
type Config struct {
	TargetRate float64
}

// DefaultConfig returns sensible defaults for analytics.
func DefaultConfig() Config {
	return Config{TargetRate: DefaultTargetRate}
}

// Input is everything the aggregator needs. HintsUsed is taken as a floor
// for the hint count found in Log.
type Input struct {
	Log            []eventlog.Event
	Solution       graph.SolutionSet
	Wrong          graph.WrongCatalog
	ElapsedSeconds float64
	HintsUsed      int
}

// Aggregate computes the performance profile. It is deterministic: the same
// input always yields the same profile. The completion score is left for
// the caller to fill in from its scoring configuration.
func Aggregate(in Input, cfg Config) Profile {
	counts := eventlog.Tally(in.Log)
	hints := max(counts.Hints, in.HintsUsed)
	required := len(in.Solution)

	var m Metrics
	m.PatternRecognition = patternRecognition(counts.Correct, counts.Incorrect)
	if required > 0 {
		m.StrategicReasoning = clamp(float64(counts.Correct) / float64(required) * 100)
	} else {
		m.StrategicReasoning = m.PatternRecognition
	}
	m.Metacognition = metacognition(hints, required, counts.Incorrect, counts.Attempts())
	m.CognitiveEfficiency = cognitiveEfficiency(counts.Correct, in.ElapsedSeconds, cfg.TargetRate)
	m.ErrorRecovery = errorRecovery(in.Log, counts.Correct)

	top, focus := extremes(m)
	return Profile{
		Metrics:   m,
		TopSkill:  top,
		FocusArea: focus,
		Overall:   LabelFor(m.Mean()),
		Counters: Counters{
			Correct:        counts.Correct,
			Incorrect:      counts.Incorrect,
			Neutral:        counts.Neutral,
			HintsUsed:      hints,
			Interactions:   len(in.Log),
			ElapsedSeconds: in.ElapsedSeconds,
		},
		Mistakes: mistakes(in.Log, in.Wrong),
	}
}

func patternRecognition(correct, incorrect int) float64 {
	if correct+incorrect == 0 {
		return 0
	}
	return clamp(float64(correct) / float64(correct+incorrect) * 100)
}

func metacognition(hints, required, incorrect, attempts int) float64 {
	var hintImpact float64
	if required > 0 {
		hintImpact = math.Min(60, float64(hints)/float64(required)*60)
	} else {
		hintImpact = math.Min(60, float64(hints)*15)
	}
	var errorImpact float64
	if attempts > 0 {
		errorImpact = float64(incorrect) / float64(attempts) * 40
	}
	return clamp(100 - hintImpact - errorImpact)
}

func cognitiveEfficiency(correct int, elapsedSeconds, targetRate float64) float64 {
	if targetRate <= 0 {
		targetRate = DefaultTargetRate
	}
	minutes := math.Max(1.0/60, elapsedSeconds/60)
	return clamp(math.Min(100, float64(correct)/minutes/targetRate*100))
}

// errorRecovery is the share of wrong attempts whose very next event is a
// correct attempt.
func errorRecovery(events []eventlog.Event, correct int) float64 {
	wrong, recovered := 0, 0
	for i, e := range events {
		if !isAttempt(e, graph.Wrong) {
			continue
		}
		wrong++
		if i+1 < len(events) && isAttempt(events[i+1], graph.Correct) {
			recovered++
		}
	}
	if wrong == 0 {
		if correct > 0 {
			return 100
		}
		return 0
	}
	return clamp(float64(recovered) / float64(wrong) * 100)
}

func isAttempt(e eventlog.Event, c graph.Classification) bool {
	return e.Kind == eventlog.KindConnectionAttempted && e.Connection.Classification == c
}

func extremes(m Metrics) (top, focus Metric) {
	all := AllMetrics()
	top, focus = all[0], all[0]
	for _, metric := range all[1:] {
		if m.Get(metric) > m.Get(top) {
			top = metric
		}
		if m.Get(metric) < m.Get(focus) {
			focus = metric
		}
	}
	return top, focus
}

func mistakes(events []eventlog.Event, catalog graph.WrongCatalog) []Mistake {
	byEdge := make(map[graph.Edge]int)
	var out []Mistake
	for _, e := range events {
		if !isAttempt(e, graph.Wrong) {
			continue
		}
		edge := e.Connection.Edge()
		if i, ok := byEdge[edge]; ok {
			out[i].Count++
			continue
		}
		mk := Mistake{Source: edge.Source, Target: edge.Target, Count: 1}
		for _, w := range catalog {
			if w.Edge() == edge {
				mk.Explanation = w.Explanation
				break
			}
		}
		byEdge[edge] = len(out)
		out = append(out, mk)
	}
	return out
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
