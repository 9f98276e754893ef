// Package analytics derives the critical-thinking performance profile from
// a finished session's interaction log.
package analytics

// Metric names one of the five profile dimensions.
type Metric string

const (
	PatternRecognition  Metric = "Pattern Recognition"
	StrategicReasoning  Metric = "Strategic Reasoning"
	Metacognition       Metric = "Metacognition"
	CognitiveEfficiency Metric = "Cognitive Efficiency"
	ErrorRecovery       Metric = "Error Recovery"
)

// AllMetrics returns the metrics in declaration order. Ties for top skill
// and focus area are broken by this order.
func AllMetrics() []Metric {
	return []Metric{PatternRecognition, StrategicReasoning, Metacognition, CognitiveEfficiency, ErrorRecovery}
}

// Label is the coarse overall rating.
type Label string

const (
	Excellent  Label = "Excellent"
	Good       Label = "Good"
	Developing Label = "Developing"
)

// LabelFor maps a mean metric value to an overall label.
func LabelFor(mean float64) Label {
	switch {
	case mean >= 80:
		return Excellent
	case mean >= 60:
		return Good
	default:
		return Developing
	}
}

// Metrics holds the five metric values, each in [0,100].
type Metrics struct {
	PatternRecognition  float64 `json:"pattern_recognition"`
	StrategicReasoning  float64 `json:"strategic_reasoning"`
	Metacognition       float64 `json:"metacognition"`
	CognitiveEfficiency float64 `json:"cognitive_efficiency"`
	ErrorRecovery       float64 `json:"error_recovery"`
}

// Get returns the value of a single metric.
func (m Metrics) Get(metric Metric) float64 {
	switch metric {
	case PatternRecognition:
		return m.PatternRecognition
	case StrategicReasoning:
		return m.StrategicReasoning
	case Metacognition:
		return m.Metacognition
	case CognitiveEfficiency:
		return m.CognitiveEfficiency
	case ErrorRecovery:
		return m.ErrorRecovery
	}
	return 0
}

// Mean returns the average of the five metrics.
func (m Metrics) Mean() float64 {
	return (m.PatternRecognition + m.StrategicReasoning + m.Metacognition +
		m.CognitiveEfficiency + m.ErrorRecovery) / 5
}

// Counters are the raw numbers shown next to the profile.
type Counters struct {
	Correct        int     `json:"correct"`
	Incorrect      int     `json:"incorrect"`
	Neutral        int     `json:"neutral"`
	HintsUsed      int     `json:"hints_used"`
	Interactions   int     `json:"interactions"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Mistake summarizes repeated attempts at one known wrong connection.
type Mistake struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Explanation string `json:"explanation,omitempty"`
	Count       int    `json:"count"`
}

// Profile is the frozen scorecard of one playthrough.
type Profile struct {
	Metrics         Metrics   `json:"metrics"`
	CompletionScore int       `json:"completion_score"`
	TopSkill        Metric    `json:"top_skill"`
	FocusArea       Metric    `json:"focus_area"`
	Overall         Label     `json:"overall"`
	Counters        Counters  `json:"counters"`
	Mistakes        []Mistake `json:"mistakes,omitempty"`
}

// Describe returns a one-line reading of a metric for the report.
func Describe(metric Metric) string {
	switch metric {
	case PatternRecognition:
		return "Spotting which concepts truly connect."
	case StrategicReasoning:
		return "Covering the relationships the scenario requires."
	case Metacognition:
		return "Working independently and checking before committing."
	case CognitiveEfficiency:
		return "Reaching correct connections at a steady pace."
	case ErrorRecovery:
		return "Bouncing back with a correct move after a mistake."
	}
	return ""
}
