package game

import (
	"fmt"
	"math"
)

// DefaultThreshold is the fraction of required edges that completes a game.
const DefaultThreshold = 0.7

// RequiredCorrect returns ceil(required × threshold). A tiny epsilon keeps
// products such as 10 × 0.7 from rounding up past the intended integer.
func RequiredCorrect(required int, threshold float64) int {
	return int(math.Ceil(float64(required)*threshold - 1e-9))
}

// ThresholdMet reports whether correct connections satisfy the threshold.
// At least one correct connection is always needed so that an empty
// solution never completes on its own.
func ThresholdMet(correct, required int, threshold float64) bool {
	return correct >= 1 && correct >= RequiredCorrect(required, threshold)
}

func validateThreshold(t float64) error {
	if math.IsNaN(t) || t <= 0 || t > 1 {
		return fmt.Errorf("completion threshold %v must be in (0, 1]", t)
	}
	return nil
}
