package detector

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFindValueKellyAndEdge(t *testing.T) {
	v := NewValue(ValueConfig{})
	got := v.FindValue(0.60, 2.0)

	if !got.IsValue {
		t.Fatalf("expected value flagged")
	}
	if math.Abs(got.Edge-0.10) > 1e-9 {
		t.Fatalf("edge = %f, want 0.10", got.Edge)
	}
	if math.Abs(got.KellyFraction-0.20) > 1e-9 {
		t.Fatalf("kelly = %f, want 0.20", got.KellyFraction)
	}
	if math.Abs(got.RecommendedStake-0.05) > 1e-9 {
		t.Fatalf("quarter kelly stake = %f, want 0.05", got.RecommendedStake)
	}
	if got.Rating != RatingExceptional {
		t.Fatalf("rating = %s, want exceptional", got.Rating)
	}
	if math.Abs(got.Confidence-1.0) > 1e-9 {
		t.Fatalf("confidence = %f, want 1.0", got.Confidence)
	}
}

func TestFindValueSuppressesSuspiciousEdge(t *testing.T) {
	v := NewValue(ValueConfig{})
	// Edge 0.30 exceeds the 0.15 cap: likely stale data, suppressed.
	got := v.FindValue(0.80, 2.0)
	if got.IsValue {
		t.Fatalf("edge above max should be suppressed")
	}
	if got.Edge <= 0.15 {
		t.Fatalf("edge = %f, expected > 0.15", got.Edge)
	}
}

func TestFindValueBelowMinEdge(t *testing.T) {
	v := NewValue(ValueConfig{})
	got := v.FindValue(0.51, 2.0)
	if got.IsValue {
		t.Fatalf("1%% edge should not be flagged")
	}
	if got.Rating != RatingNoValue {
		t.Fatalf("rating = %s, want no_value", got.Rating)
	}
}

func TestFindValueKellyClamped(t *testing.T) {
	v := NewValue(ValueConfig{})
	got := v.FindValue(0.30, 2.0)
	if got.KellyFraction != 0 {
		t.Fatalf("negative edge kelly = %f, want 0", got.KellyFraction)
	}
}

func TestFindValueInvalidOdds(t *testing.T) {
	v := NewValue(ValueConfig{})
	if got := v.FindValue(0.6, 0); got.IsValue {
		t.Fatalf("zero odds should not be value")
	}
	if got := v.FindValue(0.6, -1.5); got.IsValue {
		t.Fatalf("negative odds should not be value")
	}
}

func TestScanMarketSortedByEdge(t *testing.T) {
	v := NewValue(ValueConfig{})
	predictions := map[string]float64{
		"a": 0.55, // edge 0.05
		"b": 0.60, // edge 0.10
		"c": 0.50, // edge 0, skipped
		"d": 0.58, // no odds, skipped
	}
	odds := map[string]float64{"a": 2.0, "b": 2.0, "c": 2.0}

	got := v.ScanMarket(predictions, odds)
	if len(got) != 2 {
		t.Fatalf("flagged = %d, want 2", len(got))
	}
	if got[0].Key != "b" || got[1].Key != "a" {
		t.Fatalf("order = %s,%s want b,a", got[0].Key, got[1].Key)
	}
}

func TestStakeForBankroll(t *testing.T) {
	bankroll := decimal.NewFromInt(1000)
	got := StakeForBankroll(bankroll, 0.05)
	if !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("stake = %s, want 50", got)
	}
	if !StakeForBankroll(bankroll, 0).IsZero() {
		t.Fatalf("zero fraction should produce zero stake")
	}
	if !StakeForBankroll(decimal.Zero, 0.05).IsZero() {
		t.Fatalf("zero bankroll should produce zero stake")
	}
}
