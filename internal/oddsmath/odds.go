package oddsmath

import (
	"fmt"
	"math"
)

// AmericanToDecimal converts American odds to decimal odds.
// +150 -> 2.50, -150 -> 1.67.
func AmericanToDecimal(american float64) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("invalid American odds: cannot be 0")
	}
	if american > 0 {
		return american/100.0 + 1.0, nil
	}
	return 100.0/(-american) + 1.0, nil
}

// DecimalToAmerican converts decimal odds to American odds.
func DecimalToAmerican(decimal float64) (float64, error) {
	if decimal <= 1.0 {
		return 0, fmt.Errorf("invalid decimal odds: must be > 1.0")
	}
	if decimal >= 2.0 {
		return math.Round((decimal - 1.0) * 100.0), nil
	}
	return math.Round(-100.0 / (decimal - 1.0)), nil
}

// ImpliedProbability converts decimal odds to the market's implied probability.
func ImpliedProbability(decimal float64) (float64, error) {
	if decimal <= 0 {
		return 0, fmt.Errorf("invalid decimal odds: must be > 0")
	}
	return 1.0 / decimal, nil
}

// ProbabilityToDecimal converts a win probability to fair decimal odds.
func ProbabilityToDecimal(probability float64) (float64, error) {
	if probability <= 0 || probability >= 1 {
		return 0, fmt.Errorf("invalid probability: must be between 0 and 1")
	}
	return 1.0 / probability, nil
}
