package detector

import (
	"math"
	"testing"
)

func TestIdenticalSeriesPerfectCorrelation(t *testing.T) {
	c := NewCorrelation(CorrelationConfig{})
	series := map[string][]float64{
		"p1": {10, 12, 14, 18, 20, 24},
		"p2": {10, 12, 14, 18, 20, 24},
	}
	pairs := c.CalculateLiveCorrelations(series)
	if len(pairs) != 1 {
		t.Fatalf("pairs = %d, want 1", len(pairs))
	}
	p := pairs[0]
	if math.Abs(p.Correlation-1.0) > 1e-9 {
		t.Fatalf("r = %f, want 1.0", p.Correlation)
	}
	if p.Strength != StrengthVeryStrong {
		t.Fatalf("strength = %s, want very_strong", p.Strength)
	}
	if p.Direction != "positive" {
		t.Fatalf("direction = %s, want positive", p.Direction)
	}
}

func TestNegatedSeriesPerfectAnticorrelation(t *testing.T) {
	c := NewCorrelation(CorrelationConfig{})
	series := map[string][]float64{
		"p1": {10, 12, 14, 18, 20, 24},
		"p2": {-10, -12, -14, -18, -20, -24},
	}
	pairs := c.CalculateLiveCorrelations(series)
	if len(pairs) != 1 {
		t.Fatalf("pairs = %d, want 1", len(pairs))
	}
	if math.Abs(pairs[0].Correlation+1.0) > 1e-9 {
		t.Fatalf("r = %f, want -1.0", pairs[0].Correlation)
	}
	if pairs[0].Direction != "negative" {
		t.Fatalf("direction = %s, want negative", pairs[0].Direction)
	}
}

func TestShortSeriesSkipped(t *testing.T) {
	c := NewCorrelation(CorrelationConfig{})
	series := map[string][]float64{
		"p1": {1, 2, 3},
		"p2": {1, 2, 3},
	}
	if pairs := c.CalculateLiveCorrelations(series); len(pairs) != 0 {
		t.Fatalf("short series should be skipped, got %d pairs", len(pairs))
	}
}

func TestWeakCorrelationFiltered(t *testing.T) {
	c := NewCorrelation(CorrelationConfig{})
	series := map[string][]float64{
		"p1": {10, 12, 14, 18, 20, 24},
		"p2": {5, 30, 2, 28, 7, 21},
	}
	pairs := c.CalculateLiveCorrelations(series)
	for _, p := range pairs {
		if math.Abs(p.Correlation) < 0.7 {
			t.Fatalf("pair below threshold retained: r=%f", p.Correlation)
		}
	}
}

func TestCorrelationBounds(t *testing.T) {
	if r := pearson([]float64{1, 1, 1}, []float64{2, 3, 4}); r != 0 {
		t.Fatalf("zero variance r = %f, want 0", r)
	}
	if r := pearson([]float64{1}, []float64{2}); r != 0 {
		t.Fatalf("single point r = %f, want 0", r)
	}
	r := pearson([]float64{1, 2, 3, 4, 5, 6}, []float64{2, 4, 6, 8, 10, 12})
	if r < -1 || r > 1 {
		t.Fatalf("r out of bounds: %f", r)
	}
}

func TestCorrelatedBets(t *testing.T) {
	c := NewCorrelation(CorrelationConfig{})
	pairs := []CorrelationPair{
		{First: "lebron_pts", Second: "ad_rebs", Correlation: 0.85, Direction: "positive"},
		{First: "lebron_pts", Second: "curry_pts", Correlation: -0.75, Direction: "negative"},
		{First: "other_a", Second: "other_b", Correlation: 0.9, Direction: "positive"},
	}
	bets := c.CorrelatedBets("lebron_pts", pairs)
	if len(bets) != 2 {
		t.Fatalf("bets = %d, want 2", len(bets))
	}
	if bets[0].Series != "ad_rebs" || bets[0].Recommendation != "same direction" {
		t.Fatalf("unexpected first bet: %+v", bets[0])
	}
	if bets[1].Series != "curry_pts" || bets[1].Recommendation != "opposite direction" {
		t.Fatalf("unexpected second bet: %+v", bets[1])
	}
}
