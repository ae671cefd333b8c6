package livegame

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// GameState is one in-game reading.
type GameState struct {
	Quarter       int     `json:"quarter"`
	TimeRemaining float64 `json:"time_remaining"` // seconds left in the quarter
	HomeScore     int     `json:"home_score"`
	AwayScore     int     `json:"away_score"`
	Pace          float64 `json:"pace"` // possessions per 48 minutes
	HomeFouls     int     `json:"home_fouls"`
	AwayFouls     int     `json:"away_fouls"`
	Momentum      float64 `json:"momentum"` // -10 (away run) to 10 (home run)
}

// PregameBaseline is the model's pre-tip expectation for the game.
type PregameBaseline struct {
	PredictedTotal  float64 `json:"predicted_total"`
	PredictedSpread float64 `json:"predicted_spread"`
	ExpectedPace    float64 `json:"expected_pace"`
}

func (b PregameBaseline) withDefaults() PregameBaseline {
	if b.PredictedTotal == 0 {
		b.PredictedTotal = 220
	}
	if b.ExpectedPace == 0 {
		b.ExpectedPace = 100
	}
	return b
}

// Opportunity is one live betting angle, scored 0-100 for priority.
type Opportunity struct {
	Type       string  `json:"type"` // "total" or "spread"
	Bet        string  `json:"bet"`  // "over", "under", "home", "away"
	Reasoning  string  `json:"reasoning"`
	Edge       float64 `json:"edge"`
	Confidence string  `json:"confidence"` // "low", "medium", "high"
	Timing     string  `json:"timing"`     // "early", "mid", "late"
	Score      float64 `json:"score"`

	RegressionPlay bool `json:"regression_play,omitempty"`
	MomentumFade   bool `json:"momentum_fade,omitempty"`
	ComebackPlay   bool `json:"comeback_play,omitempty"`
}

// Analyzer evaluates in-game state against a pregame baseline and surfaces
// live betting opportunities. Per-game state history is bounded.
type Analyzer struct {
	Logger *zap.Logger

	historyCap int

	mu     sync.RWMutex
	states map[string][]GameState
}

func NewAnalyzer(historyCap int, logger *zap.Logger) *Analyzer {
	if historyCap <= 0 {
		historyCap = 100
	}
	return &Analyzer{
		Logger:     logger,
		historyCap: historyCap,
		states:     map[string][]GameState{},
	}
}

// Analyze records the state and returns opportunities sorted by score.
func (a *Analyzer) Analyze(gameID string, state GameState, baseline PregameBaseline) []Opportunity {
	a.record(gameID, state)
	baseline = baseline.withDefaults()

	var opps []Opportunity
	opps = append(opps, totalOpportunities(state, baseline)...)
	opps = append(opps, spreadOpportunities(state, baseline)...)
	opps = append(opps, momentumOpportunities(state)...)
	opps = append(opps, paceOpportunities(state, baseline)...)
	opps = append(opps, regressionOpportunities(state)...)

	for i := range opps {
		opps[i].Score = scoreOpportunity(opps[i])
	}
	sort.SliceStable(opps, func(i, j int) bool { return opps[i].Score > opps[j].Score })

	if a.Logger != nil && len(opps) > 0 {
		a.Logger.Debug("live opportunities",
			zap.String("game_id", gameID),
			zap.Int("count", len(opps)),
			zap.Float64("top_score", opps[0].Score),
		)
	}
	return opps
}

// History returns recorded states for a game, oldest first.
func (a *Analyzer) History(gameID string) []GameState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	src := a.states[gameID]
	out := make([]GameState, len(src))
	copy(out, src)
	return out
}

func (a *Analyzer) record(gameID string, state GameState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	hist := append(a.states[gameID], state)
	if len(hist) > a.historyCap {
		hist = hist[len(hist)-a.historyCap:]
	}
	a.states[gameID] = hist
}

// elapsedMinutes converts quarter plus clock into minutes played of a
// 48-minute game.
func elapsedMinutes(state GameState) float64 {
	return float64(state.Quarter-1)*12 + (12 - state.TimeRemaining/60)
}

func totalOpportunities(state GameState, baseline PregameBaseline) []Opportunity {
	var opps []Opportunity

	currentTotal := float64(state.HomeScore + state.AwayScore)
	elapsed := elapsedMinutes(state)
	remaining := 48 - elapsed

	var pointsPerMinute float64
	if elapsed > 0 {
		pointsPerMinute = currentTotal / elapsed
	}
	projected := currentTotal + pointsPerMinute*remaining
	diff := projected - baseline.PredictedTotal

	if diff < -5 && state.Quarter <= 2 {
		opps = append(opps, Opportunity{
			Type: "total", Bet: "under",
			Reasoning: fmt.Sprintf("Slow start - pace projecting %.1f vs pregame %.1f",
				projected, baseline.PredictedTotal),
			Edge: math.Abs(diff), Confidence: "medium", Timing: "early",
		})
	} else if diff > 5 && state.Quarter <= 2 {
		opps = append(opps, Opportunity{
			Type: "total", Bet: "over",
			Reasoning: fmt.Sprintf("Hot start - pace projecting %.1f vs pregame %.1f",
				projected, baseline.PredictedTotal),
			Edge: diff, Confidence: "medium", Timing: "early",
		})
	}

	// Shooting above what the possession count supports tends to cool off.
	if state.Quarter >= 2 {
		pace := state.Pace
		if pace == 0 {
			pace = 100
		}
		expected := (pace * elapsed / 48) * 1.1
		if variance := currentTotal - expected; variance > 15 {
			opps = append(opps, Opportunity{
				Type: "total", Bet: "under",
				Reasoning:      "Unsustainably hot shooting - regression likely",
				Edge:           variance * 0.5,
				Confidence:     "high",
				Timing:         "mid",
				RegressionPlay: true,
			})
		}
	}
	return opps
}

func spreadOpportunities(state GameState, baseline PregameBaseline) []Opportunity {
	var opps []Opportunity

	scoreDiff := float64(state.HomeScore - state.AwayScore)
	pregameSpread := baseline.PredictedSpread

	if state.Quarter >= 2 {
		timing := "mid"
		if state.Quarter > 3 {
			timing = "late"
		}
		spreadDiff := math.Abs(scoreDiff) - math.Abs(pregameSpread)
		if pregameSpread < 0 && scoreDiff > pregameSpread+5 {
			opps = append(opps, Opportunity{
				Type: "spread", Bet: "home",
				Reasoning: fmt.Sprintf("Home underdog outperforming - currently %+.0f vs expected %+.1f",
					scoreDiff, pregameSpread),
				Edge: spreadDiff, Confidence: "medium", Timing: timing,
			})
		} else if pregameSpread > 0 && scoreDiff < pregameSpread-5 {
			opps = append(opps, Opportunity{
				Type: "spread", Bet: "away",
				Reasoning: fmt.Sprintf("Away underdog outperforming - currently %+.0f vs expected %+.1f",
					scoreDiff, pregameSpread),
				Edge: spreadDiff, Confidence: "medium", Timing: timing,
			})
		}
	}

	// Third-quarter runs close mid-size deficits often enough to price in.
	if state.Quarter == 3 {
		deficit := math.Abs(scoreDiff)
		if deficit >= 10 && deficit <= 18 {
			losing := "home"
			if scoreDiff > 0 {
				losing = "away"
			}
			opps = append(opps, Opportunity{
				Type: "spread", Bet: losing,
				Reasoning: fmt.Sprintf("Comeback potential - %.0f point deficit entering critical quarter",
					deficit),
				Edge: 3.0, Confidence: "low", Timing: "mid", ComebackPlay: true,
			})
		}
	}
	return opps
}

func momentumOpportunities(state GameState) []Opportunity {
	if math.Abs(state.Momentum) < 7 || state.Quarter < 2 {
		return nil
	}
	against := "home"
	if state.Momentum > 0 {
		against = "away"
	}
	return []Opportunity{{
		Type: "spread", Bet: against,
		Reasoning: fmt.Sprintf("Extreme momentum (%+.0f) likely to regress - fade the run",
			state.Momentum),
		Edge:         math.Abs(state.Momentum) * 0.5,
		Confidence:   "medium",
		Timing:       "mid",
		MomentumFade: true,
	}}
}

func paceOpportunities(state GameState, baseline PregameBaseline) []Opportunity {
	if state.Quarter < 2 {
		return nil
	}
	pace := state.Pace
	if pace == 0 {
		pace = 100
	}
	diff := pace - baseline.ExpectedPace
	if math.Abs(diff) <= 5 {
		return nil
	}
	if diff > 5 {
		return []Opportunity{{
			Type: "total", Bet: "over",
			Reasoning: fmt.Sprintf("Pace %.1f significantly faster than expected %.1f",
				pace, baseline.ExpectedPace),
			Edge: diff * 0.8, Confidence: "medium", Timing: "mid",
		}}
	}
	return []Opportunity{{
		Type: "total", Bet: "under",
		Reasoning: fmt.Sprintf("Pace %.1f significantly slower than expected %.1f",
			pace, baseline.ExpectedPace),
		Edge: math.Abs(diff) * 0.8, Confidence: "medium", Timing: "mid",
	}}
}

func regressionOpportunities(state GameState) []Opportunity {
	if state.Quarter != 2 {
		return nil
	}
	scoreDiff := math.Abs(float64(state.HomeScore - state.AwayScore))
	if scoreDiff < 15 {
		return nil
	}
	losing := "home"
	if state.HomeScore > state.AwayScore {
		losing = "away"
	}
	return []Opportunity{{
		Type: "spread", Bet: losing,
		Reasoning: fmt.Sprintf("Large deficit (%.0f pts) likely to regress - teams rarely maintain such leads",
			scoreDiff),
		Edge:           scoreDiff * 0.3,
		Confidence:     "medium",
		Timing:         "mid",
		RegressionPlay: true,
	}}
}

func scoreOpportunity(opp Opportunity) float64 {
	score := math.Min(opp.Edge*5, 40)

	switch opp.Confidence {
	case "high":
		score += 30
	case "medium":
		score += 20
	default:
		score += 10
	}

	switch opp.Timing {
	case "early":
		score += 15
	case "late":
		score += 5
	default:
		score += 10
	}

	if opp.RegressionPlay {
		score += 10
	}
	if opp.MomentumFade {
		score += 5
	}
	return math.Min(score, 100)
}
