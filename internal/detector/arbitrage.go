package detector

// BookOdds carries the decimal odds a single book offers per outcome of a
// two-outcome market.
type BookOdds struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

// ArbitrageLeg is one side of a riskless position.
type ArbitrageLeg struct {
	Outcome string  `json:"outcome"`
	Book    string  `json:"book"`
	Odds    float64 `json:"odds"`
	// StakeFraction of total capital that equalizes payout across legs.
	StakeFraction float64 `json:"stake_fraction"`
}

// ArbitrageOpportunity is a cross-book price discrepancy worth acting on.
type ArbitrageOpportunity struct {
	Type          string         `json:"type"`
	ProfitPercent float64        `json:"profit_percent"`
	Legs          []ArbitrageLeg `json:"legs"`
}

type ArbitrageConfig struct {
	// MinProfitPercent filters rounding noise; opportunities below it are
	// not reported.
	MinProfitPercent float64
}

func (c ArbitrageConfig) withDefaults() ArbitrageConfig {
	if c.MinProfitPercent <= 0 {
		c.MinProfitPercent = 0.5
	}
	return c
}

// Arbitrage scans best-available odds per outcome across books.
type Arbitrage struct {
	cfg ArbitrageConfig
}

func NewArbitrage(cfg ArbitrageConfig) *Arbitrage {
	return &Arbitrage{cfg: cfg.withDefaults()}
}

// FindArbitrage finds riskless cross-book profit in a two-outcome market.
// Fewer than two books or invalid prices yield no opportunities.
func (a *Arbitrage) FindArbitrage(oddsByBook map[string]BookOdds) []ArbitrageOpportunity {
	if len(oddsByBook) < 2 {
		return nil
	}

	var bestHome, bestAway float64
	var bestHomeBook, bestAwayBook string
	for book, odds := range oddsByBook {
		if odds.Home > bestHome {
			bestHome = odds.Home
			bestHomeBook = book
		}
		if odds.Away > bestAway {
			bestAway = odds.Away
			bestAwayBook = book
		}
	}
	if bestHome <= 0 || bestAway <= 0 {
		return nil
	}

	impliedSum := 1/bestHome + 1/bestAway
	if impliedSum >= 1 {
		return nil
	}
	profitPct := (1 - impliedSum) * 100
	if profitPct < a.cfg.MinProfitPercent {
		return nil
	}

	return []ArbitrageOpportunity{{
		Type:          "moneyline_arb",
		ProfitPercent: profitPct,
		Legs: []ArbitrageLeg{
			{
				Outcome:       "home",
				Book:          bestHomeBook,
				Odds:          bestHome,
				StakeFraction: (1 / bestHome) / impliedSum,
			},
			{
				Outcome:       "away",
				Book:          bestAwayBook,
				Odds:          bestAway,
				StakeFraction: (1 / bestAway) / impliedSum,
			},
		},
	}}
}
