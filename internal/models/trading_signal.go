package models

import (
	"time"

	"gorm.io/datatypes"
)

// Signal kinds produced by the generator.
const (
	SignalValueBet     = "value_bet"
	SignalLineMovement = "line_movement"
	SignalSharpMoney   = "sharp_money"
	SignalSteamMove    = "steam_move"
	SignalReverseLine  = "reverse_line"
	SignalArbitrage    = "arbitrage"
	SignalCorrelation  = "correlation"
)

// Urgency tiers, ordered.
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// UrgencyRank maps a tier to its sort weight.
func UrgencyRank(urgency string) int {
	switch urgency {
	case UrgencyCritical:
		return 4
	case UrgencyHigh:
		return 3
	case UrgencyMedium:
		return 2
	default:
		return 1
	}
}

// TradingSignal is an immutable unit of engine output. A signal is advisory:
// once now > expires_at consumers must treat it as absent; the engine never
// retracts it.
type TradingSignal struct {
	ID         string `gorm:"type:varchar(36);primaryKey" json:"id"`
	SignalType string `gorm:"type:varchar(30);not null;index" json:"signal_type"`
	MarketID   string `gorm:"type:varchar(100);not null;index" json:"market_id"`
	Selection  string `gorm:"type:varchar(100)" json:"selection"`
	BetType    string `gorm:"type:varchar(30)" json:"bet_type"`

	RecommendedOdds float64 `gorm:"not null" json:"recommended_odds"`
	CurrentOdds     float64 `gorm:"not null" json:"current_odds"`
	Edge            float64 `gorm:"not null;index" json:"edge"`
	Confidence      float64 `gorm:"not null" json:"confidence"`
	Urgency         string  `gorm:"type:varchar(10);not null;index" json:"urgency"`
	Reasoning       string  `gorm:"type:text" json:"reasoning"`
	StakeFraction   float64 `json:"stake_fraction"`

	Payload datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`

	ExpiresAt time.Time `gorm:"type:timestamptz;not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
}

func (TradingSignal) TableName() string {
	return "trading_signals"
}

// Active reports whether the signal is still valid at the given instant.
func (s TradingSignal) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
