package detector

import (
	"testing"
	"time"

	"oddsengine/internal/market"
)

func mlSnap(ts time.Time, mlHome float64) market.OddsSnapshot {
	return market.OddsSnapshot{
		MarketID:      "m1",
		Timestamp:     ts,
		MoneylineHome: mlHome,
		Book:          "bk",
	}
}

func spreadSnap(ts time.Time, spreadHome float64) market.OddsSnapshot {
	return market.OddsSnapshot{
		MarketID:   "m1",
		Timestamp:  ts,
		SpreadHome: spreadHome,
		Book:       "bk",
	}
}

func TestDetectMoneylineThresholdBoundary(t *testing.T) {
	d := NewLineMovement(LineMovementConfig{})
	base := time.Now().UTC()

	// Delta exactly at threshold (15) is significant.
	report := d.Detect([]market.OddsSnapshot{
		mlSnap(base, -110),
		mlSnap(base.Add(10*time.Minute), -125),
	})
	if !report.Detected {
		t.Fatalf("delta 15 should be detected")
	}
	if report.Movements[0].Type != market.MovementMoneyline {
		t.Fatalf("type = %s, want moneyline", report.Movements[0].Type)
	}
	if report.Movements[0].Direction != "home" {
		t.Fatalf("direction = %s, want home", report.Movements[0].Direction)
	}
	if report.Movements[0].Interpretation != "Sharp action detected" {
		t.Fatalf("interpretation = %q", report.Movements[0].Interpretation)
	}

	// Threshold - 1 is not.
	report = d.Detect([]market.OddsSnapshot{
		mlSnap(base, -110),
		mlSnap(base.Add(10*time.Minute), -124),
	})
	if report.Detected {
		t.Fatalf("delta 14 should not be detected")
	}
}

func TestDetectPublicFadeDirection(t *testing.T) {
	d := NewLineMovement(LineMovementConfig{})
	base := time.Now().UTC()
	report := d.Detect([]market.OddsSnapshot{
		mlSnap(base, -130),
		mlSnap(base.Add(5*time.Minute), -110),
	})
	if !report.Detected {
		t.Fatalf("expected detection")
	}
	if report.Movements[0].Interpretation != "Fading public money" {
		t.Fatalf("interpretation = %q, want fading", report.Movements[0].Interpretation)
	}
}

func TestDetectInsufficientHistory(t *testing.T) {
	d := NewLineMovement(LineMovementConfig{})
	if d.Detect(nil).Detected {
		t.Fatalf("nil history detected")
	}
	if d.Detect([]market.OddsSnapshot{mlSnap(time.Now(), -110)}).Detected {
		t.Fatalf("single snapshot detected")
	}
}

func TestVelocity(t *testing.T) {
	d := NewLineMovement(LineMovementConfig{})
	base := time.Now().UTC()

	// Fewer than 3 points yields 0.
	if v := d.Velocity([]market.OddsSnapshot{spreadSnap(base, -3), spreadSnap(base.Add(time.Minute), -3.5)}); v != 0 {
		t.Fatalf("velocity = %v, want 0 for 2 points", v)
	}

	// 0.5 points per minute over each pair.
	hist := []market.OddsSnapshot{
		spreadSnap(base, -3),
		spreadSnap(base.Add(time.Minute), -3.5),
		spreadSnap(base.Add(2*time.Minute), -4),
	}
	if v := d.Velocity(hist); v < 0.49 || v > 0.51 {
		t.Fatalf("velocity = %v, want 0.5", v)
	}
}

func TestSteamMove(t *testing.T) {
	d := NewLineMovement(LineMovementConfig{})
	base := time.Now().UTC()
	mk := func(values ...float64) []market.OddsSnapshot {
		out := make([]market.OddsSnapshot, len(values))
		for i, v := range values {
			out[i] = spreadSnap(base.Add(time.Duration(i)*time.Minute), v)
		}
		return out
	}

	if !d.SteamMove(mk(100, 102, 105)) {
		t.Fatalf("monotonic moves should be steam")
	}
	if d.SteamMove(mk(100, 102, 99)) {
		t.Fatalf("reversal should not be steam")
	}
	if d.SteamMove(mk(100, 102)) {
		t.Fatalf("short input should not be steam")
	}
	if d.SteamMove(mk(100, 100, 102)) {
		t.Fatalf("flat step should not be steam")
	}
}

func TestReverseLineMovement(t *testing.T) {
	d := NewLineMovement(LineMovementConfig{})
	base := time.Now().UTC()
	hist := []market.OddsSnapshot{
		spreadSnap(base, -3),
		spreadSnap(base.Add(10*time.Minute), -2),
	}

	// Public heavy on home, line moving toward away.
	if !d.ReverseLineMovement(hist, map[string]float64{"home": 75}) {
		t.Fatalf("expected reverse line movement")
	}
	// Public balanced: no signal.
	if d.ReverseLineMovement(hist, map[string]float64{"home": 55}) {
		t.Fatalf("balanced public should not trigger")
	}
	// No percentages disables the check.
	if d.ReverseLineMovement(hist, nil) {
		t.Fatalf("missing public data should not trigger")
	}

	// Public heavy on away, line moving toward home.
	histHome := []market.OddsSnapshot{
		spreadSnap(base, -2),
		spreadSnap(base.Add(10*time.Minute), -3),
	}
	if !d.ReverseLineMovement(histHome, map[string]float64{"home": 20}) {
		t.Fatalf("expected reverse line movement toward home")
	}
}
