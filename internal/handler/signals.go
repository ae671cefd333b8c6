package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"oddsengine/internal/repository"
	"oddsengine/internal/signal"
)

type SignalHandler struct {
	Repo      repository.Repository
	Generator *signal.Generator
}

func (h *SignalHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/signals")
	group.GET("", h.list)
	group.POST("/generate", h.generate)
}

func (h *SignalHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	typ := strings.TrimSpace(c.Query("type"))
	marketID := strings.TrimSpace(c.Query("market_id"))
	urgency := strings.TrimSpace(c.Query("urgency"))
	since := strings.TrimSpace(c.Query("since"))
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	activeOnly := c.Query("active") == "true"

	var sinceTime *time.Time
	if since != "" {
		if parsed, err := time.Parse(time.RFC3339, since); err == nil {
			parsed = parsed.UTC()
			sinceTime = &parsed
		}
	}

	params := repository.ListSignalsParams{
		Limit:      limit,
		Offset:     offset,
		Since:      sinceTime,
		ActiveOnly: activeOnly,
		OrderBy:    "created_at",
		Asc:        boolPtr(false),
	}
	if typ != "" {
		params.Type = &typ
	}
	if marketID != "" {
		params.MarketID = &marketID
	}
	if urgency != "" {
		params.Urgency = &urgency
	}

	items, err := h.Repo.ListSignals(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, int64(len(items))))
}

type generateRequest struct {
	Markets     map[string]signal.MarketBook  `json:"markets" binding:"required"`
	Predictions map[string]map[string]float64 `json:"predictions"`
	PublicPct   map[string]map[string]float64 `json:"public_pct"`
}

func (h *SignalHandler) generate(c *gin.Context) {
	if h.Generator == nil {
		Error(c, http.StatusInternalServerError, "generator unavailable", nil)
		return
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	signals := h.Generator.Generate(c.Request.Context(), req.Markets, req.Predictions, req.PublicPct)
	Ok(c, signals, map[string]any{"count": len(signals)})
}
