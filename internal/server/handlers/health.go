package handlers

import (
	"log/slog"
	"net/http"
)

// HealthHandler handles liveness checks. The endpoint is unauthenticated
// because clients probe it to detect connectivity.
type HealthHandler struct {
	logger  *slog.Logger
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(logger *slog.Logger, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		version: version,
	}
}

// HandleHealth handles GET /health.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.logger, w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}
