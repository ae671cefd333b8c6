package detector

import (
	"fmt"
	"math"

	"oddsengine/internal/market"
)

// LineMovementConfig holds the movement thresholds per market type.
type LineMovementConfig struct {
	MoneylineThreshold float64
	SpreadThreshold    float64
	TotalThreshold     float64
	// PublicThreshold is the public-money share above which a contrary line
	// move counts as reverse line movement.
	PublicThreshold float64
}

func (c LineMovementConfig) withDefaults() LineMovementConfig {
	if c.MoneylineThreshold <= 0 {
		c.MoneylineThreshold = 15
	}
	if c.SpreadThreshold <= 0 {
		c.SpreadThreshold = 0.5
	}
	if c.TotalThreshold <= 0 {
		c.TotalThreshold = 0.5
	}
	if c.PublicThreshold <= 0 {
		c.PublicThreshold = 0.7
	}
	return c
}

// LineMovement classifies movement between points in a market's history.
type LineMovement struct {
	cfg LineMovementConfig
}

func NewLineMovement(cfg LineMovementConfig) *LineMovement {
	return &LineMovement{cfg: cfg.withDefaults()}
}

// Detect compares the oldest and newest snapshot in the window. Fewer than
// two snapshots is "not detected", never an error.
func (d *LineMovement) Detect(history []market.OddsSnapshot) market.MovementReport {
	if len(history) < 2 {
		return market.MovementReport{}
	}
	first := history[0]
	latest := history[len(history)-1]

	mlDelta := latest.MoneylineHome - first.MoneylineHome
	spreadDelta := latest.SpreadHome - first.SpreadHome
	totalDelta := latest.TotalLine - first.TotalLine

	var movements []market.Movement
	if math.Abs(mlDelta) >= d.cfg.MoneylineThreshold {
		// Sign convention: the home price shortening (negative delta) reads
		// as sharp action, lengthening as the book fading public money.
		direction := "away"
		interpretation := "Fading public money"
		if mlDelta < 0 {
			direction = "home"
			interpretation = "Sharp action detected"
		}
		movements = append(movements, market.Movement{
			Type:           market.MovementMoneyline,
			Direction:      direction,
			Magnitude:      math.Abs(mlDelta),
			Interpretation: interpretation,
		})
	}
	if math.Abs(spreadDelta) >= d.cfg.SpreadThreshold {
		direction := "away"
		interpretation := "Line moved toward away team"
		if spreadDelta < 0 {
			direction = "home"
			interpretation = "Line moved toward home team"
		}
		movements = append(movements, market.Movement{
			Type:           market.MovementSpread,
			Direction:      direction,
			Magnitude:      math.Abs(spreadDelta),
			Interpretation: interpretation,
		})
	}
	if math.Abs(totalDelta) >= d.cfg.TotalThreshold {
		direction := "under"
		interpretation := "Sharp action on under"
		if totalDelta > 0 {
			direction = "over"
			interpretation = "Sharp action on over"
		}
		movements = append(movements, market.Movement{
			Type:           market.MovementTotal,
			Direction:      direction,
			Magnitude:      math.Abs(totalDelta),
			Interpretation: interpretation,
		})
	}

	if len(movements) == 0 {
		return market.MovementReport{}
	}
	return market.MovementReport{
		Detected:    true,
		Movements:   movements,
		SpanMinutes: latest.Timestamp.Sub(first.Timestamp).Minutes(),
		Velocity:    d.Velocity(history),
	}
}

// Velocity is the mean absolute spread change per minute across consecutive
// pairs. It ranks urgency; it never triggers detection on its own.
func (d *LineMovement) Velocity(history []market.OddsSnapshot) float64 {
	if len(history) < 3 {
		return 0
	}
	var sum float64
	var count int
	for i := 1; i < len(history); i++ {
		dt := history[i].Timestamp.Sub(history[i-1].Timestamp).Seconds()
		if dt <= 0 {
			continue
		}
		delta := math.Abs(history[i].SpreadHome - history[i-1].SpreadHome)
		sum += delta / (dt / 60.0)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// SteamMove reports coordinated movement: at least three sequential readings
// (typically from different books) where every consecutive spread delta is
// nonzero and shares the same sign.
func (d *LineMovement) SteamMove(readings []market.OddsSnapshot) bool {
	if len(readings) < 3 {
		return false
	}
	var sign float64
	for i := 1; i < len(readings); i++ {
		delta := readings[i].SpreadHome - readings[i-1].SpreadHome
		if delta == 0 {
			return false
		}
		s := math.Copysign(1, delta)
		if sign == 0 {
			sign = s
			continue
		}
		if s != sign {
			return false
		}
	}
	return true
}

// ReverseLineMovement reports the contrarian signal: the public is heavy on
// one side while the spread moves toward the other. Missing public
// percentages disable the check for the market.
func (d *LineMovement) ReverseLineMovement(history []market.OddsSnapshot, publicPct map[string]float64) bool {
	if len(history) < 2 || len(publicPct) == 0 {
		return false
	}
	first := history[0]
	latest := history[len(history)-1]
	spreadDelta := latest.SpreadHome - first.SpreadHome

	homePct, ok := publicPct["home"]
	if !ok {
		return false
	}
	threshold := d.cfg.PublicThreshold * 100
	if homePct > threshold && spreadDelta > 0 {
		return true // public on home, line moves toward away
	}
	if homePct < 100-threshold && spreadDelta < 0 {
		return true // public on away, line moves toward home
	}
	return false
}

// Describe renders a short human-readable summary for a report.
func Describe(report market.MovementReport) string {
	if !report.Detected || len(report.Movements) == 0 {
		return "no significant movement"
	}
	m := report.Movements[0]
	return fmt.Sprintf("%s moved %.1f toward %s over %.1f min: %s",
		m.Type, m.Magnitude, m.Direction, report.SpanMinutes, m.Interpretation)
}
