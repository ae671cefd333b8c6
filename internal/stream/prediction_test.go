package stream

import (
	"context"
	"math"
	"testing"
	"time"

	"oddsengine/internal/probability"
)

func TestPredictOverWhenProjectionClearsLine(t *testing.T) {
	src := &probability.Static{
		Projections: map[string]float64{"lebron/points": 30.0},
	}
	p := NewPredictor(src, nil, nil, 0.15)

	pred, err := p.Predict(context.Background(), PropLine{
		PlayerID: "lebron", StatType: "points",
		Line: 24.5, OverOdds: 1.91, UnderOdds: 1.91,
	}, GameContext{})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if pred.Recommendation != RecommendOver {
		t.Fatalf("expected OVER, got %s", pred.Recommendation)
	}
	if pred.OverProbability <= 0.5 {
		t.Fatalf("projection above line must give over probability > 0.5, got %f", pred.OverProbability)
	}
	if pred.Edge < 0.02 {
		t.Fatalf("expected edge above threshold, got %f", pred.Edge)
	}
}

func TestPredictPassWhenLineIsFair(t *testing.T) {
	src := &probability.Static{
		Projections: map[string]float64{"lebron/points": 25.0},
	}
	p := NewPredictor(src, nil, nil, 0.15)

	pred, err := p.Predict(context.Background(), PropLine{
		PlayerID: "lebron", StatType: "points",
		Line: 25.0, OverOdds: 1.91, UnderOdds: 1.91,
	}, GameContext{})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if pred.Recommendation != RecommendPass {
		t.Fatalf("expected PASS on a fair line, got %s", pred.Recommendation)
	}
	if math.Abs(pred.OverProbability-0.5) > 1e-9 {
		t.Fatalf("projection at the line gives probability 0.5, got %f", pred.OverProbability)
	}
}

func TestPredictUnderWhenProjectionFallsShort(t *testing.T) {
	src := &probability.Static{
		Projections: map[string]float64{"lebron/points": 20.0},
	}
	p := NewPredictor(src, nil, nil, 0.15)

	pred, err := p.Predict(context.Background(), PropLine{
		PlayerID: "lebron", StatType: "points",
		Line: 25.5, OverOdds: 1.91, UnderOdds: 1.91,
	}, GameContext{})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if pred.Recommendation != RecommendUnder {
		t.Fatalf("expected UNDER, got %s", pred.Recommendation)
	}
}

func TestPredictPicksLargerEdgeWhenBothSidesClear(t *testing.T) {
	src := &probability.Static{
		Projections: map[string]float64{"lebron/points": 20.0},
	}
	p := NewPredictor(src, nil, nil, 0.15)

	// Long over odds clear the threshold too, but the under pays more.
	pred, err := p.Predict(context.Background(), PropLine{
		PlayerID: "lebron", StatType: "points",
		Line: 25.5, OverOdds: 100.0, UnderOdds: 1.5,
	}, GameContext{})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if pred.Recommendation != RecommendUnder {
		t.Fatalf("expected UNDER to win on edge, got %s", pred.Recommendation)
	}
	if pred.Edge < 0.25 {
		t.Fatalf("expected the under side's edge, got %f", pred.Edge)
	}
}

func TestPredictErrorOnMissingProjection(t *testing.T) {
	p := NewPredictor(&probability.Static{}, nil, nil, 0.15)

	if _, err := p.Predict(context.Background(), PropLine{PlayerID: "unknown", StatType: "points"}, GameContext{}); err == nil {
		t.Fatalf("expected error when projection is unavailable")
	}
}

func TestAdjustForContext(t *testing.T) {
	base := 25.0
	cases := []struct {
		name string
		gc   GameContext
		want float64
	}{
		{"back to back", GameContext{BackToBack: true}, base * 0.95},
		{"extended rest", GameContext{ExtendedRest: true}, base * 1.03},
		{"home", GameContext{HomeGame: true}, base * 1.02},
		{"pace", GameContext{PaceFactor: 1.05}, base * 1.05},
		{"pace clamp low", GameContext{PaceFactor: 0.5}, base * 0.9},
		{"pace clamp high", GameContext{PaceFactor: 5.0}, base * 1.1},
		{"minutes clamp low", GameContext{ProjectedShare: 0.5}, base * 0.9},
		{"minutes clamp high", GameContext{ProjectedShare: 1.5}, base * 1.1},
	}
	for _, tc := range cases {
		if got := adjustForContext(base, tc.gc); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s: got %f want %f", tc.name, got, tc.want)
		}
	}
}

func TestPredictBatchSkipsFailures(t *testing.T) {
	src := &probability.Static{
		Projections: map[string]float64{"a/points": 30.0},
	}
	p := NewPredictor(src, nil, nil, 0.15)

	props := []PropLine{
		{PlayerID: "a", StatType: "points", Line: 24.5, OverOdds: 1.91, UnderOdds: 1.91},
		{PlayerID: "missing", StatType: "points", Line: 24.5, OverOdds: 1.91, UnderOdds: 1.91},
	}
	out := p.PredictBatch(context.Background(), props, GameContext{}, time.Second)
	if len(out) != 1 {
		t.Fatalf("expected 1 prediction, got %d", len(out))
	}
	if out[0].PlayerID != "a" {
		t.Fatalf("wrong prediction kept: %s", out[0].PlayerID)
	}
}

func TestPredictPublishes(t *testing.T) {
	e := newTestEngine()
	defer e.Close()
	ch := e.SubscribeChan(ChannelPredictions, 4)

	src := &probability.Static{
		Projections: map[string]float64{"a/points": 30.0},
	}
	p := NewPredictor(src, e, nil, 0.15)
	if _, err := p.Predict(context.Background(), PropLine{PlayerID: "a", StatType: "points", Line: 24.5, OverOdds: 1.91}, GameContext{}); err != nil {
		t.Fatalf("predict: %v", err)
	}

	select {
	case ev := <-ch:
		if _, ok := ev.Data.(PropPrediction); !ok {
			t.Fatalf("expected PropPrediction payload, got %T", ev.Data)
		}
	case <-time.After(time.Second):
		t.Fatalf("prediction not published")
	}
}
