package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oddsengine/internal/buffer"
	"oddsengine/internal/market"
	"oddsengine/internal/stream"
)

type OddsHandler struct {
	Engine *stream.Engine
	Buffer *buffer.OddsBuffer
}

func (h *OddsHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/odds")
	group.POST("", h.ingest)
	group.GET("/markets", h.listMarkets)
	group.GET("/:marketID/history", h.history)
	group.GET("/:marketID/latest", h.latest)
}

func (h *OddsHandler) ingest(c *gin.Context) {
	if h.Engine == nil {
		Error(c, http.StatusInternalServerError, "engine unavailable", nil)
		return
	}
	var snap market.OddsSnapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := h.Engine.ProcessOddsUpdate(c.Request.Context(), snap); err != nil {
		Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"accepted": true}, nil)
}

func (h *OddsHandler) listMarkets(c *gin.Context) {
	if h.Buffer == nil {
		Error(c, http.StatusInternalServerError, "buffer unavailable", nil)
		return
	}
	markets := h.Buffer.Markets()
	Ok(c, markets, map[string]any{"count": len(markets)})
}

func (h *OddsHandler) history(c *gin.Context) {
	if h.Buffer == nil {
		Error(c, http.StatusInternalServerError, "buffer unavailable", nil)
		return
	}
	marketID := c.Param("marketID")
	history := h.Buffer.History(marketID)

	limit := intQuery(c, "limit", 0)
	if limit > 0 && limit < len(history) {
		history = history[len(history)-limit:]
	}
	Ok(c, history, map[string]any{"market_id": marketID, "count": len(history)})
}

func (h *OddsHandler) latest(c *gin.Context) {
	if h.Buffer == nil {
		Error(c, http.StatusInternalServerError, "buffer unavailable", nil)
		return
	}
	marketID := c.Param("marketID")
	snap, ok := h.Buffer.Latest(marketID)
	if !ok {
		Error(c, http.StatusNotFound, "no snapshots for market", map[string]any{"market_id": marketID})
		return
	}
	Ok(c, snap, nil)
}
