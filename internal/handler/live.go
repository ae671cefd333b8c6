package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oddsengine/internal/livegame"
)

type LiveHandler struct {
	Analyzer *livegame.Analyzer
}

func (h *LiveHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/live")
	group.POST("/analyze", h.analyze)
	group.GET("/:gameID/history", h.history)
}

type liveAnalyzeRequest struct {
	GameID   string                   `json:"game_id" binding:"required"`
	State    livegame.GameState       `json:"state" binding:"required"`
	Baseline livegame.PregameBaseline `json:"baseline"`
}

func (h *LiveHandler) analyze(c *gin.Context) {
	if h.Analyzer == nil {
		Error(c, http.StatusInternalServerError, "analyzer unavailable", nil)
		return
	}
	var req liveAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if req.State.Quarter < 1 || req.State.Quarter > 4 {
		Error(c, http.StatusBadRequest, "quarter must be 1-4", nil)
		return
	}
	opportunities := h.Analyzer.Analyze(req.GameID, req.State, req.Baseline)
	Ok(c, opportunities, map[string]any{
		"game_id": req.GameID,
		"count":   len(opportunities),
	})
}

func (h *LiveHandler) history(c *gin.Context) {
	if h.Analyzer == nil {
		Error(c, http.StatusInternalServerError, "analyzer unavailable", nil)
		return
	}
	gameID := c.Param("gameID")
	states := h.Analyzer.History(gameID)
	Ok(c, states, map[string]any{"game_id": gameID, "count": len(states)})
}
