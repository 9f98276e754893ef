package scoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/conceptlink/internal/graph"
)

// Mode selects how correct and wrong connections are valued.
type Mode string

const (
	// ModeFlat awards CorrectPoints and deducts WrongPenalty for every
	// connection regardless of authored values.
	ModeFlat Mode = "flat"

	// ModeWeighted uses the matched solution entry's points and the wrong
	// catalog entry's penalty, falling back to the flat constants.
	ModeWeighted Mode = "weighted"
)

// Weights are the named coefficients of the completion score. They are
// expected to sum to 1.
type Weights struct {
	Accuracy         float64 `mapstructure:"accuracy"`
	RequiredCoverage float64 `mapstructure:"required_coverage"`
	TimeBonus        float64 `mapstructure:"time_bonus"`
	Efficiency       float64 `mapstructure:"efficiency"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Accuracy + w.RequiredCoverage + w.TimeBonus + w.Efficiency
}

// DefaultWeights returns the stock completion score weights.
func DefaultWeights() Weights {
	return Weights{
		Accuracy:         0.40,
		RequiredCoverage: 0.30,
		TimeBonus:        0.20,
		Efficiency:       0.10,
	}
}

// Config holds scoring settings.
type Config struct {
	Mode          Mode
	CorrectPoints int
	WrongPenalty  int
	HintPenalty   int

	Weights            Weights
	TimeBonusThreshold time.Duration
}

// DefaultConfig returns the flat +10 / -5 / -3 scoring model.
func DefaultConfig() Config {
	return Config{
		Mode:               ModeFlat,
		CorrectPoints:      10,
		WrongPenalty:       5,
		HintPenalty:        3,
		Weights:            DefaultWeights(),
		TimeBonusThreshold: 5 * time.Minute,
	}
}

// WithOverrides applies authored per-model overrides. Zero fields in o
// leave the receiver's values untouched.
func (c Config) WithOverrides(o *graph.ScoringOverrides) Config {
	if o == nil {
		return c
	}
	if o.Mode != "" {
		c.Mode = Mode(o.Mode)
	}
	if o.CorrectPoints > 0 {
		c.CorrectPoints = o.CorrectPoints
	}
	if o.WrongPenalty > 0 {
		c.WrongPenalty = o.WrongPenalty
	}
	if o.HintPenalty > 0 {
		c.HintPenalty = o.HintPenalty
	}
	return c
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	var errs []string
	if c.Mode != ModeFlat && c.Mode != ModeWeighted {
		errs = append(errs, fmt.Sprintf("unknown scoring mode %q", c.Mode))
	}
	if c.CorrectPoints < 0 || c.WrongPenalty < 0 || c.HintPenalty < 0 {
		errs = append(errs, "points and penalties must be non-negative")
	}
	for name, w := range map[string]float64{
		"accuracy":          c.Weights.Accuracy,
		"required_coverage": c.Weights.RequiredCoverage,
		"time_bonus":        c.Weights.TimeBonus,
		"efficiency":        c.Weights.Efficiency,
	} {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("weight %s must be non-negative", name))
		}
	}
	if c.TimeBonusThreshold <= 0 {
		errs = append(errs, "time bonus threshold must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid scoring config:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
