package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"oddsengine/internal/stream"
)

type PredictionHandler struct {
	Predictor *stream.Predictor
	Timeout   time.Duration
}

func (h *PredictionHandler) Register(r *gin.Engine) {
	r.POST("/api/v1/predictions/props", h.predictProps)
}

type propsRequest struct {
	Props       []stream.PropLine  `json:"props" binding:"required"`
	GameContext stream.GameContext `json:"game_context"`
}

func (h *PredictionHandler) predictProps(c *gin.Context) {
	if h.Predictor == nil {
		Error(c, http.StatusInternalServerError, "predictor unavailable", nil)
		return
	}
	var req propsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	predictions := h.Predictor.PredictBatch(c.Request.Context(), req.Props, req.GameContext, timeout)
	Ok(c, predictions, map[string]any{
		"requested": len(req.Props),
		"predicted": len(predictions),
	})
}
