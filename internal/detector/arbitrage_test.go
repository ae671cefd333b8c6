package detector

import (
	"math"
	"testing"
)

func TestFindArbitrageProfit(t *testing.T) {
	a := NewArbitrage(ArbitrageConfig{})
	opps := a.FindArbitrage(map[string]BookOdds{
		"alpha": {Home: 2.10, Away: 1.80},
		"beta":  {Home: 1.85, Away: 2.10},
	})
	if len(opps) != 1 {
		t.Fatalf("opps = %d, want 1", len(opps))
	}
	opp := opps[0]
	// 1/2.10 + 1/2.10 = 0.952..., profit ~ 4.76%.
	if math.Abs(opp.ProfitPercent-4.7619) > 0.01 {
		t.Fatalf("profit = %f, want ~4.76", opp.ProfitPercent)
	}
	if len(opp.Legs) != 2 {
		t.Fatalf("legs = %d, want 2", len(opp.Legs))
	}
	if opp.Legs[0].Book != "alpha" || opp.Legs[1].Book != "beta" {
		t.Fatalf("legs routed to %s/%s, want alpha/beta", opp.Legs[0].Book, opp.Legs[1].Book)
	}
	// Equal odds split stakes evenly.
	if math.Abs(opp.Legs[0].StakeFraction-0.5) > 1e-9 || math.Abs(opp.Legs[1].StakeFraction-0.5) > 1e-9 {
		t.Fatalf("stake fractions = %f/%f, want 0.5/0.5", opp.Legs[0].StakeFraction, opp.Legs[1].StakeFraction)
	}
}

func TestFindArbitrageNoOpportunity(t *testing.T) {
	a := NewArbitrage(ArbitrageConfig{})
	// 1/1.90 + 1/1.90 = 1.0526 > 1: standard vig, no arb.
	opps := a.FindArbitrage(map[string]BookOdds{
		"alpha": {Home: 1.90, Away: 1.90},
		"beta":  {Home: 1.90, Away: 1.90},
	})
	if len(opps) != 0 {
		t.Fatalf("opps = %d, want 0", len(opps))
	}
}

func TestFindArbitrageEdgeCases(t *testing.T) {
	a := NewArbitrage(ArbitrageConfig{})
	if got := a.FindArbitrage(map[string]BookOdds{"solo": {Home: 2.2, Away: 2.2}}); len(got) != 0 {
		t.Fatalf("single book should yield nothing")
	}
	if got := a.FindArbitrage(map[string]BookOdds{
		"alpha": {Home: 0, Away: 2.2},
		"beta":  {Home: -1.5, Away: 2.3},
	}); len(got) != 0 {
		t.Fatalf("invalid prices should yield nothing")
	}
	if got := a.FindArbitrage(nil); len(got) != 0 {
		t.Fatalf("empty input should yield nothing")
	}
}

func TestFindArbitrageMinProfitFilter(t *testing.T) {
	a := NewArbitrage(ArbitrageConfig{MinProfitPercent: 5.0})
	opps := a.FindArbitrage(map[string]BookOdds{
		"alpha": {Home: 2.10, Away: 1.80},
		"beta":  {Home: 1.85, Away: 2.10},
	})
	if len(opps) != 0 {
		t.Fatalf("4.76%% profit should be filtered by a 5%% floor")
	}
}
