package detector

import (
	"math"
	"sort"
)

// CorrelationStrength labels |r| by fixed bands.
type CorrelationStrength string

const (
	StrengthModerate   CorrelationStrength = "moderate"
	StrengthStrong     CorrelationStrength = "strong"
	StrengthVeryStrong CorrelationStrength = "very_strong"
)

// CorrelationPair is a derived relationship between two named series. It is
// recomputed on every analysis call and never persisted.
type CorrelationPair struct {
	First       string              `json:"first"`
	Second      string              `json:"second"`
	Correlation float64             `json:"correlation"`
	Direction   string              `json:"direction"`
	Strength    CorrelationStrength `json:"strength"`
}

// CorrelatedBet is a recommendation derived from a focal series.
type CorrelatedBet struct {
	Series         string  `json:"series"`
	Correlation    float64 `json:"correlation"`
	Direction      string  `json:"direction"`
	Recommendation string  `json:"recommendation"`
}

type CorrelationConfig struct {
	MinCorrelation  float64
	MinObservations int
}

func (c CorrelationConfig) withDefaults() CorrelationConfig {
	if c.MinCorrelation <= 0 {
		c.MinCorrelation = 0.7
	}
	if c.MinObservations <= 0 {
		c.MinObservations = 6
	}
	return c
}

// Correlation detects co-movement between live numeric series so correlated
// legs are not priced as independent upstream.
type Correlation struct {
	cfg CorrelationConfig
}

func NewCorrelation(cfg CorrelationConfig) *Correlation {
	return &Correlation{cfg: cfg.withDefaults()}
}

// CalculateLiveCorrelations computes Pearson correlation for every unordered
// pair of series with enough observations, keeping only pairs at or above
// the configured threshold.
func (c *Correlation) CalculateLiveCorrelations(series map[string][]float64) []CorrelationPair {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []CorrelationPair
	for i, first := range names {
		for _, second := range names[i+1:] {
			a, b := series[first], series[second]
			if len(a) < c.cfg.MinObservations || len(b) < c.cfg.MinObservations {
				continue
			}
			n := len(a)
			if len(b) < n {
				n = len(b)
			}
			r := pearson(a[:n], b[:n])
			if math.Abs(r) < c.cfg.MinCorrelation {
				continue
			}
			direction := "positive"
			if r < 0 {
				direction = "negative"
			}
			out = append(out, CorrelationPair{
				First:       first,
				Second:      second,
				Correlation: r,
				Direction:   direction,
				Strength:    strengthLabel(math.Abs(r)),
			})
		}
	}
	return out
}

// CorrelatedBets returns the series correlated with a focal series and a
// same/opposite-direction recommendation for each.
func (c *Correlation) CorrelatedBets(primary string, pairs []CorrelationPair) []CorrelatedBet {
	var out []CorrelatedBet
	for _, pair := range pairs {
		var other string
		switch primary {
		case pair.First:
			other = pair.Second
		case pair.Second:
			other = pair.First
		default:
			continue
		}
		recommendation := "same direction"
		if pair.Direction == "negative" {
			recommendation = "opposite direction"
		}
		out = append(out, CorrelatedBet{
			Series:         other,
			Correlation:    pair.Correlation,
			Direction:      pair.Direction,
			Recommendation: recommendation,
		})
	}
	return out
}

func strengthLabel(abs float64) CorrelationStrength {
	switch {
	case abs >= 0.9:
		return StrengthVeryStrong
	case abs >= 0.8:
		return StrengthStrong
	default:
		return StrengthModerate
	}
}

// pearson computes the Pearson correlation coefficient. Zero-variance input
// or mismatched tiny samples yield 0.
func pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	n := float64(len(x))

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	numerator := n*sumXY - sumX*sumY
	denominator := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if denominator == 0 {
		return 0
	}
	r := numerator / denominator
	if math.IsNaN(r) {
		return 0
	}
	// Floating point can push |r| marginally past 1.
	if r > 1 {
		r = 1
	}
	if r < -1 {
		r = -1
	}
	return r
}
