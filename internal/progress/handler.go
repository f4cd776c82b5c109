package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mathgen-backend/internal/shared/auth"
	"mathgen-backend/internal/shared/metrics"
	"mathgen-backend/internal/shared/server/respond"
	"mathgen-backend/internal/shared/telemetry"
)

// Handler streams a user's progress events as server-sent events.
type Handler struct {
	Hub  *Hub
	Wait time.Duration
}

// NewHandler builds the SSE handler. EventSource cannot send headers, so the JWT arrives as ?token=.
func NewHandler(hub *Hub, wait time.Duration) *Handler {
	return &Handler{Hub: hub, Wait: wait}
}

// RegisterRoutes wires the SSE endpoint.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/events", h.events)
}

func (h *Handler) events(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing token", nil)
		return
	}
	claims, err := auth.VerifyJWT(token)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Invalid token", nil)
		return
	}
	userID := claims.Sub

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	sub := h.Hub.Subscribe(userID)
	metrics.ProgressSubscribers.Inc()
	telemetry.Info("progress.subscribe", map[string]any{"user_id": userID})
	defer func() {
		h.Hub.Remove(userID)
		metrics.ProgressSubscribers.Dec()
		telemetry.Info("progress.unsubscribe", map[string]any{"user_id": userID})
	}()

	ctx := c.Request.Context()
	for {
		ev, err := sub.Next(ctx, h.Wait)
		if err != nil {
			if !errors.Is(err, ErrClosed) && ctx.Err() == nil {
				telemetry.Warn("progress.stream_error", map[string]any{"user_id": userID, "error": err})
			}
			return
		}
		if err := writeEvent(c, ev); err != nil {
			return
		}
	}
}

func writeEvent(c *gin.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
