package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/live"
)

// readyTimeout bounds the backend readiness check
const readyTimeout = 5 * time.Second

// LiveStatus reports the state of the live-update channel
type LiveStatus interface {
	State() live.State
}

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	inbox Inbox
	live  LiveStatus
}

// NewHealthHandler creates a new HealthHandler. status may be nil.
func NewHealthHandler(inbox Inbox, status LiveStatus) *HealthHandler {
	return &HealthHandler{inbox: inbox, live: status}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// Health handles GET /health. It reports the viewer itself and never
// calls the backend.
func (h *HealthHandler) Health(c echo.Context) error {
	services := map[string]string{"viewer": "healthy"}
	if h.live != nil {
		services["live"] = h.live.State().String()
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:   "healthy",
		Services: services,
	})
}

// Ready handles GET /ready. The viewer is ready once the backend answers
// its metadata endpoint.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readyTimeout)
	defer cancel()

	meta, err := h.inbox.GetMetaData(ctx)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "backend unreachable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"version": meta.Version,
	})
}
