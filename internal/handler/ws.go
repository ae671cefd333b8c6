package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"oddsengine/internal/stream"
)

// WSHandler bridges engine channels to websocket clients. Each connection
// holds one subscription; the write path inherits the engine's non-blocking
// fan-out, so a stalled client loses events instead of stalling the engine.
type WSHandler struct {
	Engine *stream.Engine
	Logger *zap.Logger
}

var wsChannels = map[string]bool{
	stream.ChannelOdds:         true,
	stream.ChannelLineMovement: true,
	stream.ChannelSignals:      true,
	stream.ChannelPredictions:  true,
}

func (h *WSHandler) Register(r *gin.Engine) {
	r.GET("/ws/:channel", h.serve)
}

func (h *WSHandler) serve(c *gin.Context) {
	if h.Engine == nil {
		Error(c, http.StatusInternalServerError, "engine unavailable", nil)
		return
	}
	channel := c.Param("channel")
	if !wsChannels[channel] {
		Error(c, http.StatusNotFound, "unknown channel", map[string]any{"channel": channel})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("websocket accept failed", zap.Error(err))
		}
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closed")

	ctx := c.Request.Context()
	events := h.Engine.SubscribeChan(channel, 0)
	defer h.Engine.Unsubscribe(channel, events)

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "client gone")
			return
		case ev, ok := <-events:
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "engine shutdown")
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				if h.Logger != nil {
					h.Logger.Debug("websocket write failed",
						zap.String("channel", channel),
						zap.Error(err),
					)
				}
				return
			}
		}
	}
}
