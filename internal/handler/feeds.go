package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oddsengine/internal/repository"
)

type FeedHandler struct {
	Repo repository.Repository
}

func (h *FeedHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/feeds", h.list)
}

func (h *FeedHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	items, err := h.Repo.ListFeedSources(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}
