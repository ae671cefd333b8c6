package risk

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"oddsengine/internal/models"
)

type Config struct {
	// MaxStakeFraction caps the bankroll fraction any single signal may
	// recommend. Signals above it are clamped, not rejected.
	MaxStakeFraction float64 `mapstructure:"max_stake_fraction"`
	// MaxPerMarket limits concurrent signals on one market.
	MaxPerMarket int `mapstructure:"max_per_market"`
	// MinConfidence rejects signals the detectors themselves rate weakly.
	MinConfidence float64 `mapstructure:"min_confidence"`
	// MaxSignalAge rejects signals generated from data older than this.
	MaxSignalAge time.Duration `mapstructure:"max_signal_age"`
	// StaleDataAction is "block" or "warn".
	StaleDataAction string `mapstructure:"stale_data_action"`
}

func (c Config) withDefaults() Config {
	if c.MaxStakeFraction <= 0 {
		c.MaxStakeFraction = 0.10
	}
	if c.MaxPerMarket <= 0 {
		c.MaxPerMarket = 3
	}
	if c.MaxSignalAge <= 0 {
		c.MaxSignalAge = 5 * time.Minute
	}
	return c
}

type Manager struct {
	Logger *zap.Logger

	cfg Config
}

func New(cfg Config, logger *zap.Logger) *Manager {
	return &Manager{Logger: logger, cfg: cfg.withDefaults()}
}

// Filter applies cheap, deterministic checks. It does not mutate inputs.
func (m *Manager) Filter(signals []models.TradingSignal) []models.TradingSignal {
	if len(signals) == 0 {
		return nil
	}
	if m == nil {
		return signals
	}
	now := time.Now().UTC()
	perMarket := map[string]int{}
	out := make([]models.TradingSignal, 0, len(signals))
	filtered := 0
	for _, sig := range signals {
		if sig.Confidence < m.cfg.MinConfidence {
			filtered++
			if m.Logger != nil {
				m.Logger.Debug("risk: reject low confidence",
					zap.String("signal_type", sig.SignalType),
					zap.Float64("confidence", sig.Confidence),
					zap.Float64("min_confidence", m.cfg.MinConfidence),
				)
			}
			continue
		}
		if m.rejectStale(sig, now) {
			action := strings.ToLower(strings.TrimSpace(m.cfg.StaleDataAction))
			if action == "" {
				action = "block"
			}
			if action != "warn" {
				filtered++
				if m.Logger != nil {
					m.Logger.Debug("risk: reject stale",
						zap.String("signal_type", sig.SignalType),
						zap.Time("created_at", sig.CreatedAt),
					)
				}
				continue
			}
		}
		if perMarket[sig.MarketID] >= m.cfg.MaxPerMarket {
			filtered++
			if m.Logger != nil {
				m.Logger.Debug("risk: reject market cap",
					zap.String("market_id", sig.MarketID),
					zap.Int("max_per_market", m.cfg.MaxPerMarket),
				)
			}
			continue
		}
		perMarket[sig.MarketID]++

		if sig.StakeFraction > m.cfg.MaxStakeFraction {
			sig.StakeFraction = m.cfg.MaxStakeFraction
		}
		out = append(out, sig)
	}
	if m.Logger != nil && filtered > 0 {
		m.Logger.Info("risk: filtered signals",
			zap.Int("filtered", filtered),
			zap.Int("total", len(signals)),
			zap.Int("passed", len(out)),
		)
	}
	return out
}

func (m *Manager) rejectStale(sig models.TradingSignal, now time.Time) bool {
	if sig.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(sig.CreatedAt) > m.cfg.MaxSignalAge
}
