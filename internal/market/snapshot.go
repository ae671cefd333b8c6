package market

import "time"

// ConsensusBook marks a snapshot whose prices are averaged across books.
const ConsensusBook = "consensus"

// OddsSnapshot is one normalized odds reading for a market. Snapshots are
// immutable once created; feeds produce a new snapshot per update.
type OddsSnapshot struct {
	MarketID  string    `json:"market_id"`
	Timestamp time.Time `json:"timestamp"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`

	// Moneyline prices in American odds (e.g. -150 / +130).
	MoneylineHome float64 `json:"moneyline_home"`
	MoneylineAway float64 `json:"moneyline_away"`

	// Point spread line from the home perspective, with prices per side.
	SpreadHome      float64 `json:"spread_home"`
	SpreadAway      float64 `json:"spread_away"`
	SpreadHomePrice float64 `json:"spread_home_price"`
	SpreadAwayPrice float64 `json:"spread_away_price"`

	// Game total line and over/under prices.
	TotalLine  float64 `json:"total_line"`
	TotalOver  float64 `json:"total_over"`
	TotalUnder float64 `json:"total_under"`

	Book string `json:"book"`
}

// Valid reports whether the snapshot carries the minimum identifying fields.
func (s OddsSnapshot) Valid() bool {
	return s.MarketID != "" && !s.Timestamp.IsZero()
}
