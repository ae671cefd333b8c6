package stream

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"oddsengine/internal/probability"
)

// PropLine is one player prop as offered by a book.
type PropLine struct {
	PlayerID string  `json:"player_id"`
	StatType string  `json:"stat_type"`
	Line     float64 `json:"line"`
	// Decimal odds on each side of the line.
	OverOdds  float64 `json:"over_odds"`
	UnderOdds float64 `json:"under_odds"`
}

// GameContext adjusts a projection for live conditions. Zero values mean
// "unknown" and leave the projection untouched.
type GameContext struct {
	BackToBack     bool    `json:"back_to_back"`
	ExtendedRest   bool    `json:"extended_rest"`
	HomeGame       bool    `json:"home_game"`
	PaceFactor     float64 `json:"pace_factor"`
	ProjectedShare float64 `json:"projected_minutes_share"`
}

// PropPrediction is the engine's view of one prop.
type PropPrediction struct {
	PlayerID        string  `json:"player_id"`
	StatType        string  `json:"stat_type"`
	Line            float64 `json:"line"`
	Projection      float64 `json:"projection"`
	OverProbability float64 `json:"over_probability"`
	Recommendation  string  `json:"recommendation"`
	Edge            float64 `json:"edge"`
}

// Recommendation values.
const (
	RecommendOver  = "OVER"
	RecommendUnder = "UNDER"
	RecommendPass  = "PASS"
)

// Predictor turns model projections into over/under prop calls and publishes
// them on the predictions channel.
type Predictor struct {
	Source      probability.Source
	Engine      *Engine
	Logger      *zap.Logger
	StdDevRatio float64
	MinEdge     float64
}

func NewPredictor(source probability.Source, engine *Engine, logger *zap.Logger, stdDevRatio float64) *Predictor {
	if stdDevRatio <= 0 {
		stdDevRatio = 0.15
	}
	return &Predictor{
		Source:      source,
		Engine:      engine,
		Logger:      logger,
		StdDevRatio: stdDevRatio,
		MinEdge:     0.02,
	}
}

// Predict assesses one prop line. A projection-service failure returns an
// error so the caller can skip the prop rather than act on a stale guess.
func (p *Predictor) Predict(ctx context.Context, prop PropLine, gameCtx GameContext) (PropPrediction, error) {
	if p.Source == nil {
		return PropPrediction{}, fmt.Errorf("projection source unavailable")
	}
	projection, err := p.Source.Projection(ctx, prop.PlayerID, prop.StatType)
	if err != nil {
		return PropPrediction{}, fmt.Errorf("projection for %s/%s: %w", prop.PlayerID, prop.StatType, err)
	}
	projection = adjustForContext(projection, gameCtx)

	// Player stat outcomes are modelled as normal around the projection with
	// spread proportional to its size.
	sigma := projection * p.StdDevRatio
	overProb := 0.5
	if sigma > 0 {
		overProb = 1 - normalCDF(prop.Line, projection, sigma)
	}

	pred := PropPrediction{
		PlayerID:        prop.PlayerID,
		StatType:        prop.StatType,
		Line:            prop.Line,
		Projection:      projection,
		OverProbability: overProb,
		Recommendation:  RecommendPass,
	}

	var overEdge, underEdge float64
	if prop.OverOdds > 1 {
		overEdge = overProb - 1/prop.OverOdds
	}
	if prop.UnderOdds > 1 {
		underEdge = (1 - overProb) - 1/prop.UnderOdds
	}
	// When both sides price loose, take whichever offers more.
	switch {
	case overEdge >= p.MinEdge && overEdge >= underEdge:
		pred.Recommendation = RecommendOver
		pred.Edge = overEdge
	case underEdge >= p.MinEdge:
		pred.Recommendation = RecommendUnder
		pred.Edge = underEdge
	}

	if p.Engine != nil {
		p.Engine.Publish(ChannelPredictions, pred)
	}
	return pred, nil
}

// PredictBatch runs Predict over a slate, skipping props whose projection
// could not be fetched within the deadline.
func (p *Predictor) PredictBatch(ctx context.Context, props []PropLine, gameCtx GameContext, timeout time.Duration) []PropPrediction {
	out := make([]PropPrediction, 0, len(props))
	for _, prop := range props {
		callCtx := ctx
		cancel := context.CancelFunc(func() {})
		if timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		pred, err := p.Predict(callCtx, prop, gameCtx)
		cancel()
		if err != nil {
			if p.Logger != nil {
				p.Logger.Warn("prop skipped", zap.String("player_id", prop.PlayerID), zap.Error(err))
			}
			continue
		}
		out = append(out, pred)
	}
	return out
}

func adjustForContext(projection float64, gc GameContext) float64 {
	if gc.BackToBack {
		projection *= 0.95
	} else if gc.ExtendedRest {
		projection *= 1.03
	}
	if gc.HomeGame {
		projection *= 1.02
	}
	if gc.PaceFactor > 0 {
		pace := gc.PaceFactor
		if pace < 0.9 {
			pace = 0.9
		}
		if pace > 1.1 {
			pace = 1.1
		}
		projection *= pace
	}
	if gc.ProjectedShare > 0 {
		share := gc.ProjectedShare
		if share < 0.9 {
			share = 0.9
		}
		if share > 1.1 {
			share = 1.1
		}
		projection *= share
	}
	return projection
}

func normalCDF(x, mean, sigma float64) float64 {
	return 0.5 * (1 + math.Erf((x-mean)/(sigma*math.Sqrt2)))
}
