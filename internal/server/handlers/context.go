// Package handlers implements the server's HTTP endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rtirumala2025/petsync/pkg/api"
)

// contextKey is the type for request context keys.
type contextKey string

const (
	// UserIDKey holds the authenticated user id in the request context.
	UserIDKey contextKey = "user_id"
	// UsernameKey holds the authenticated username in the request context.
	UsernameKey contextKey = "username"
)

// GetUserID extracts the authenticated user id from the request context.
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetUsername extracts the authenticated username from the request context.
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// writeJSON encodes a response body with the given status.
func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// writeError sends a JSON error body.
func writeError(logger *slog.Logger, w http.ResponseWriter, status int, message string) {
	writeJSON(logger, w, status, api.ErrorResponse{Error: message})
}
