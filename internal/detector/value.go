package detector

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ValueRating buckets an edge into a categorical label.
type ValueRating string

const (
	RatingNoValue     ValueRating = "no_value"
	RatingMarginal    ValueRating = "marginal"
	RatingGood        ValueRating = "good"
	RatingVeryGood    ValueRating = "very_good"
	RatingExcellent   ValueRating = "excellent"
	RatingExceptional ValueRating = "exceptional"
)

// ValueAssessment is the transient result of a single value computation.
type ValueAssessment struct {
	Key              string      `json:"key,omitempty"`
	IsValue          bool        `json:"is_value"`
	Edge             float64     `json:"edge"`
	EdgePercent      float64     `json:"edge_percent"`
	ImpliedProb      float64     `json:"implied_prob"`
	PredictedProb    float64     `json:"predicted_prob"`
	KellyFraction    float64     `json:"kelly_fraction"`
	RecommendedStake float64     `json:"recommended_stake"`
	Rating           ValueRating `json:"value_rating"`
	Confidence       float64     `json:"confidence"`
}

type ValueConfig struct {
	MinEdge float64
	// MaxEdge caps what is believable: edges above it are treated as stale
	// or bad data and suppressed.
	MaxEdge float64
	// KellyFraction scales the full Kelly stake for the recommendation.
	KellyFraction float64
}

func (c ValueConfig) withDefaults() ValueConfig {
	if c.MinEdge <= 0 {
		c.MinEdge = 0.02
	}
	if c.MaxEdge <= 0 {
		c.MaxEdge = 0.15
	}
	if c.KellyFraction <= 0 {
		c.KellyFraction = 0.25
	}
	return c
}

// Value quantifies betting value from a model probability and market price.
type Value struct {
	cfg ValueConfig
}

func NewValue(cfg ValueConfig) *Value {
	return &Value{cfg: cfg.withDefaults()}
}

// FindValue computes edge and Kelly sizing for a single opportunity. Invalid
// odds yield a zero assessment, never an error.
func (v *Value) FindValue(probability, decimalOdds float64) ValueAssessment {
	if decimalOdds <= 0 || probability < 0 || probability > 1 {
		return ValueAssessment{Rating: RatingNoValue}
	}
	impliedProb := 1 / decimalOdds
	edge := probability - impliedProb

	kelly := 0.0
	if edge > 0 {
		b := decimalOdds - 1
		if b > 0 {
			q := 1 - probability
			kelly = (probability*b - q) / b
			if kelly < 0 {
				kelly = 0
			}
		}
	}

	confidence := edge / 0.10
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}

	return ValueAssessment{
		IsValue:          edge >= v.cfg.MinEdge && edge <= v.cfg.MaxEdge,
		Edge:             edge,
		EdgePercent:      edge * 100,
		ImpliedProb:      impliedProb,
		PredictedProb:    probability,
		KellyFraction:    kelly,
		RecommendedStake: kelly * v.cfg.KellyFraction,
		Rating:           v.rate(edge),
		Confidence:       confidence,
	}
}

func (v *Value) rate(edge float64) ValueRating {
	switch {
	case edge >= 0.10:
		return RatingExceptional
	case edge >= 0.07:
		return RatingExcellent
	case edge >= 0.05:
		return RatingVeryGood
	case edge >= 0.03:
		return RatingGood
	case edge >= v.cfg.MinEdge:
		return RatingMarginal
	default:
		return RatingNoValue
	}
}

// ScanMarket applies FindValue across a mapping of opportunity keys to
// (probability, odds) pairs. Keys missing from either side are skipped.
// Results are the flagged assessments sorted by descending edge.
func (v *Value) ScanMarket(predictions map[string]float64, odds map[string]float64) []ValueAssessment {
	out := make([]ValueAssessment, 0, len(predictions))
	for key, prob := range predictions {
		price, ok := odds[key]
		if !ok {
			continue
		}
		assessment := v.FindValue(prob, price)
		if !assessment.IsValue {
			continue
		}
		assessment.Key = key
		out = append(out, assessment)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Edge > out[j].Edge })
	return out
}

// StakeForBankroll converts a recommended stake fraction into a money amount.
func StakeForBankroll(bankroll decimal.Decimal, fraction float64) decimal.Decimal {
	if fraction <= 0 || bankroll.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return bankroll.Mul(decimal.NewFromFloat(fraction)).Round(2)
}
