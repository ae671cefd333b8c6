package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"oddsengine/internal/buffer"
	"oddsengine/internal/detector"
	"oddsengine/internal/market"
	"oddsengine/internal/models"
	"oddsengine/internal/oddsmath"
	"oddsengine/internal/repository"
	"oddsengine/internal/risk"
)

// MarketBook is the current tradable state of one market as seen by the
// generator: a selection label plus decimal odds keyed by bet type.
type MarketBook struct {
	Selection string             `json:"selection"`
	Odds      map[string]float64 `json:"odds"`
}

type Config struct {
	// MaxActive caps the ranked output per run to bound consumer load.
	MaxActive   int
	MovementTTL time.Duration
	ValueTTL    time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxActive <= 0 {
		c.MaxActive = 20
	}
	if c.MovementTTL <= 0 {
		c.MovementTTL = 15 * time.Minute
	}
	if c.ValueTTL <= 0 {
		c.ValueTTL = 60 * time.Minute
	}
	return c
}

// Generator fuses detector outputs into a ranked, deduplicated, time-bounded
// signal list. Signals are immutable once created and age out by expiry; a
// superseding detection creates a new signal rather than mutating an old one.
type Generator struct {
	Value  *detector.Value
	Line   *detector.LineMovement
	Arb    *detector.Arbitrage
	Buffer *buffer.OddsBuffer
	Repo   repository.Repository
	Logger *zap.Logger

	// Risk, when set, filters and clamps ranked signals before they leave
	// the generator.
	Risk *risk.Manager

	// OnSignal, when set, observes every signal that survives ranking.
	OnSignal func(models.TradingSignal)

	cfg Config
}

func NewGenerator(cfg Config, value *detector.Value, line *detector.LineMovement, arb *detector.Arbitrage, buf *buffer.OddsBuffer, repo repository.Repository, logger *zap.Logger) *Generator {
	return &Generator{
		Value:  value,
		Line:   line,
		Arb:    arb,
		Buffer: buf,
		Repo:   repo,
		Logger: logger,
		cfg:    cfg.withDefaults(),
	}
}

// Generate runs all detectors across the supplied markets and returns the
// ranked signal list. Persisted signals are best-effort; a storage failure
// never drops the in-memory result.
func (g *Generator) Generate(ctx context.Context, markets map[string]MarketBook, predictions map[string]map[string]float64, publicPct map[string]map[string]float64) []models.TradingSignal {
	now := time.Now().UTC()
	var signals []models.TradingSignal

	signals = append(signals, g.valueSignals(now, markets, predictions)...)
	signals = append(signals, g.movementSignals(now, markets, publicPct)...)
	signals = append(signals, g.arbitrageSignals(now, markets)...)

	signals = g.rank(g.dedupe(signals))
	if g.Risk != nil {
		signals = g.Risk.Filter(signals)
	}

	for i := range signals {
		if g.OnSignal != nil {
			g.OnSignal(signals[i])
		}
		if g.Repo != nil {
			if err := g.Repo.InsertSignal(ctx, &signals[i]); err != nil && g.Logger != nil {
				g.Logger.Warn("persist signal failed",
					zap.String("signal_type", signals[i].SignalType),
					zap.String("market_id", signals[i].MarketID),
					zap.Error(err),
				)
			}
		}
	}
	return signals
}

func (g *Generator) valueSignals(now time.Time, markets map[string]MarketBook, predictions map[string]map[string]float64) []models.TradingSignal {
	var out []models.TradingSignal
	for marketID, preds := range predictions {
		book, ok := markets[marketID]
		if !ok {
			continue
		}
		for betType, prob := range preds {
			odds, ok := book.Odds[betType]
			if !ok {
				continue
			}
			assessment := g.Value.FindValue(prob, odds)
			if !assessment.IsValue {
				continue
			}
			recommended := 0.0
			if prob > 0 {
				recommended = 1 / prob
			}
			out = append(out, models.TradingSignal{
				ID:              uuid.NewString(),
				SignalType:      models.SignalValueBet,
				MarketID:        marketID,
				Selection:       book.Selection,
				BetType:         betType,
				RecommendedOdds: recommended,
				CurrentOdds:     odds,
				Edge:            assessment.Edge,
				Confidence:      assessment.Confidence,
				Urgency:         urgencyForEdge(assessment.Edge),
				Reasoning: fmt.Sprintf("%s value detected: %.1f%% edge",
					assessment.Rating, assessment.EdgePercent),
				StakeFraction: assessment.RecommendedStake,
				ExpiresAt:     now.Add(g.cfg.ValueTTL),
				CreatedAt:     now,
			})
		}
	}
	return out
}

func (g *Generator) movementSignals(now time.Time, markets map[string]MarketBook, publicPct map[string]map[string]float64) []models.TradingSignal {
	if g.Buffer == nil {
		return nil
	}
	var out []models.TradingSignal
	for marketID, book := range markets {
		history := g.Buffer.History(marketID)
		if len(history) < 2 {
			continue
		}
		report := g.Line.Detect(history)
		if report.Detected {
			m := report.Movements[0]
			urgency := models.UrgencyLow
			if report.Velocity > 0 {
				urgency = models.UrgencyMedium
			}
			payload, _ := json.Marshal(report)
			out = append(out, models.TradingSignal{
				ID:         uuid.NewString(),
				SignalType: models.SignalLineMovement,
				MarketID:   marketID,
				Selection:  book.Selection,
				BetType:    string(m.Type),
				Confidence: confidenceForVelocity(report.Velocity),
				Urgency:    urgency,
				Reasoning:  detector.Describe(report),
				Payload:    datatypes.JSON(payload),
				ExpiresAt:  now.Add(g.cfg.MovementTTL),
				CreatedAt:  now,
			})
		}
		if g.Line.SteamMove(history) {
			out = append(out, models.TradingSignal{
				ID:         uuid.NewString(),
				SignalType: models.SignalSteamMove,
				MarketID:   marketID,
				Selection:  book.Selection,
				BetType:    string(market.MovementSpread),
				Confidence: 0.8,
				Urgency:    models.UrgencyHigh,
				Reasoning:  "unanimous line movement across sequential readings",
				ExpiresAt:  now.Add(g.cfg.MovementTTL),
				CreatedAt:  now,
			})
		}
		if pct, ok := publicPct[marketID]; ok && g.Line.ReverseLineMovement(history, pct) {
			out = append(out, models.TradingSignal{
				ID:         uuid.NewString(),
				SignalType: models.SignalReverseLine,
				MarketID:   marketID,
				Selection:  book.Selection,
				BetType:    string(market.MovementSpread),
				Confidence: 0.75,
				Urgency:    models.UrgencyHigh,
				Reasoning: fmt.Sprintf("line moving against %.0f%% public money",
					pct["home"]),
				ExpiresAt: now.Add(g.cfg.MovementTTL),
				CreatedAt: now,
			})
		}
	}
	return out
}

func (g *Generator) arbitrageSignals(now time.Time, markets map[string]MarketBook) []models.TradingSignal {
	if g.Buffer == nil {
		return nil
	}
	var out []models.TradingSignal
	for marketID, book := range markets {
		oddsByBook := g.latestOddsByBook(marketID)
		if len(oddsByBook) < 2 {
			continue
		}
		for _, opp := range g.Arb.FindArbitrage(oddsByBook) {
			edge := opp.ProfitPercent / 100
			payload, _ := json.Marshal(opp)
			out = append(out, models.TradingSignal{
				ID:            uuid.NewString(),
				SignalType:    models.SignalArbitrage,
				MarketID:      marketID,
				Selection:     book.Selection,
				BetType:       opp.Type,
				Edge:          edge,
				Confidence:    1.0,
				Urgency:       urgencyForEdge(edge),
				Reasoning:     fmt.Sprintf("cross-book arbitrage: %.2f%% riskless profit", opp.ProfitPercent),
				StakeFraction: opp.Legs[0].StakeFraction,
				Payload:       datatypes.JSON(payload),
				ExpiresAt:     now.Add(g.cfg.MovementTTL),
				CreatedAt:     now,
			})
		}
	}
	return out
}

// latestOddsByBook re-keys a market's history by originating book, keeping
// the most recent reading per book, moneyline converted to decimal.
func (g *Generator) latestOddsByBook(marketID string) map[string]detector.BookOdds {
	history := g.Buffer.History(marketID)
	out := map[string]detector.BookOdds{}
	for _, snap := range history {
		// Averaged consensus readings are not a bookable venue.
		if snap.Book == "" || snap.Book == market.ConsensusBook {
			continue
		}
		home, err := oddsmath.AmericanToDecimal(snap.MoneylineHome)
		if err != nil {
			continue
		}
		away, err := oddsmath.AmericanToDecimal(snap.MoneylineAway)
		if err != nil {
			continue
		}
		out[snap.Book] = detector.BookOdds{Home: home, Away: away}
	}
	return out
}

// dedupe keeps the first signal per (kind, market, bet type) in a run.
func (g *Generator) dedupe(signals []models.TradingSignal) []models.TradingSignal {
	seen := map[string]struct{}{}
	out := signals[:0]
	for _, sig := range signals {
		key := sig.SignalType + "|" + sig.MarketID + "|" + sig.BetType
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, sig)
	}
	return out
}

func (g *Generator) rank(signals []models.TradingSignal) []models.TradingSignal {
	sort.SliceStable(signals, func(i, j int) bool {
		ri, rj := models.UrgencyRank(signals[i].Urgency), models.UrgencyRank(signals[j].Urgency)
		if ri != rj {
			return ri > rj
		}
		return signals[i].Edge > signals[j].Edge
	})
	if len(signals) > g.cfg.MaxActive {
		signals = signals[:g.cfg.MaxActive]
	}
	return signals
}

func urgencyForEdge(edge float64) string {
	switch {
	case edge >= 0.10:
		return models.UrgencyCritical
	case edge >= 0.07:
		return models.UrgencyHigh
	case edge >= 0.04:
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}

func confidenceForVelocity(velocity float64) float64 {
	// A point per minute is an unusually fast market.
	c := velocity
	if c > 1 {
		c = 1
	}
	if c < 0.3 {
		c = 0.3
	}
	return c
}
