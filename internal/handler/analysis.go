package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"oddsengine/internal/detector"
)

// AnalysisHandler exposes the detectors for ad-hoc evaluation: value scans,
// cross-book arbitrage checks, and live correlation queries.
type AnalysisHandler struct {
	Value *detector.Value
	Arb   *detector.Arbitrage
	Corr  *detector.Correlation
}

func (h *AnalysisHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/analysis")
	group.POST("/value", h.scanValue)
	group.POST("/arbitrage", h.findArbitrage)
	group.POST("/correlations", h.correlations)
	group.POST("/stake", h.stake)
}

type valueScanRequest struct {
	Predictions map[string]float64 `json:"predictions" binding:"required"`
	Odds        map[string]float64 `json:"odds" binding:"required"`
}

func (h *AnalysisHandler) scanValue(c *gin.Context) {
	var req valueScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	assessments := h.Value.ScanMarket(req.Predictions, req.Odds)
	Ok(c, assessments, map[string]any{"count": len(assessments)})
}

type arbitrageRequest struct {
	OddsByBook map[string]detector.BookOdds `json:"odds_by_book" binding:"required"`
}

func (h *AnalysisHandler) findArbitrage(c *gin.Context) {
	var req arbitrageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	opportunities := h.Arb.FindArbitrage(req.OddsByBook)
	Ok(c, opportunities, map[string]any{"count": len(opportunities)})
}

type correlationRequest struct {
	Series  map[string][]float64 `json:"series" binding:"required"`
	Primary string               `json:"primary"`
}

func (h *AnalysisHandler) correlations(c *gin.Context) {
	var req correlationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	pairs := h.Corr.CalculateLiveCorrelations(req.Series)
	resp := gin.H{"pairs": pairs}
	if req.Primary != "" {
		resp["correlated_bets"] = h.Corr.CorrelatedBets(req.Primary, pairs)
	}
	Ok(c, resp, map[string]any{"count": len(pairs)})
}

type stakeRequest struct {
	Bankroll      decimal.Decimal `json:"bankroll" binding:"required"`
	StakeFraction float64         `json:"stake_fraction" binding:"required"`
}

func (h *AnalysisHandler) stake(c *gin.Context) {
	var req stakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if req.StakeFraction < 0 || req.StakeFraction > 1 {
		Error(c, http.StatusBadRequest, "stake_fraction must be within [0,1]", nil)
		return
	}
	amount := detector.StakeForBankroll(req.Bankroll, req.StakeFraction)
	Ok(c, gin.H{"stake": amount}, nil)
}
