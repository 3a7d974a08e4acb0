package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rtirumala2025/petsync/internal/models"
	"github.com/rtirumala2025/petsync/internal/server/storage"
	"github.com/rtirumala2025/petsync/pkg/api"
)

// Notifier publishes change notifications to realtime subscribers.
type Notifier interface {
	Publish(ctx context.Context, n api.ChangeNotification) error
}

// SyncHandler handles state pull and push requests.
type SyncHandler struct {
	logger   *slog.Logger
	states   storage.StateStorage
	notifier Notifier
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(logger *slog.Logger, states storage.StateStorage, notifier Notifier) *SyncHandler {
	return &SyncHandler{
		logger:   logger,
		states:   states,
		notifier: notifier,
	}
}

// HandleGetSync handles GET /api/v1/sync. Before the user's first push
// it returns an empty state at version 0 rather than an error, so a
// fresh client can bootstrap.
func (h *SyncHandler) HandleGetSync(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		writeError(h.logger, w, http.StatusUnauthorized, "unauthorized")
		return
	}

	state, conflicts, err := h.states.GetState(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrStateNotFound) {
			writeJSON(h.logger, w, http.StatusOK, api.SyncEnvelope{
				State: api.SyncState{Version: 0, Snapshot: json.RawMessage(`{}`)},
			})
			return
		}
		h.logger.Error("failed to get sync state", "user_id", userID, "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Debug("state pulled", "user_id", userID, "version", state.Version)

	writeJSON(h.logger, w, http.StatusOK, api.SyncEnvelope{
		State:     stateToWire(state),
		Conflicts: conflictsToWire(conflicts),
	})
}

// HandlePostSync handles POST /api/v1/sync. A stale base version is not
// rejected: the server merges and reports conflicts in the 200 response.
func (h *SyncHandler) HandlePostSync(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		writeError(h.logger, w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req api.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.DeviceID == "" {
		writeError(h.logger, w, http.StatusBadRequest, "device_id is required")
		return
	}
	if len(req.Snapshot) == 0 || !json.Valid(req.Snapshot) {
		writeError(h.logger, w, http.StatusBadRequest, "snapshot must be valid JSON")
		return
	}

	outcome, err := h.states.ApplyPush(r.Context(), userID, storage.PushInput{
		LastModified: req.LastModified,
		DeviceID:     req.DeviceID,
		Snapshot:     models.Snapshot(req.Snapshot),
		BaseVersion:  req.Version,
	})
	if err != nil {
		h.logger.Error("failed to apply push", "user_id", userID, "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("push applied",
		"user_id", userID,
		"device_id", req.DeviceID,
		"base_version", req.Version,
		"new_version", outcome.State.Version,
		"changed", outcome.Changed,
		"conflicts", len(outcome.Conflicts))

	if outcome.Changed && h.notifier != nil {
		err := h.notifier.Publish(r.Context(), api.ChangeNotification{
			UserID:   userID,
			DeviceID: req.DeviceID,
			Version:  outcome.State.Version,
		})
		if err != nil {
			// Notification delivery is best-effort; clients converge on
			// their next sync anyway.
			h.logger.Warn("failed to publish change notification",
				"user_id", userID, "error", err)
		}
	}

	writeJSON(h.logger, w, http.StatusOK, api.SyncEnvelope{
		State:     stateToWire(outcome.State),
		Conflicts: conflictsToWire(outcome.Conflicts),
	})
}

func stateToWire(s *models.SyncState) api.SyncState {
	return api.SyncState{
		Version:      s.Version,
		Snapshot:     json.RawMessage(s.Snapshot),
		LastModified: s.LastModified,
		LastDeviceID: s.LastDeviceID,
	}
}

func conflictsToWire(in []models.Conflict) []api.Conflict {
	if len(in) == 0 {
		return nil
	}
	out := make([]api.Conflict, 0, len(in))
	for _, c := range in {
		out = append(out, api.Conflict{
			Field:       c.Field,
			Resolution:  string(c.Resolution),
			LocalValue:  c.LocalValue,
			RemoteValue: c.RemoteValue,
		})
	}
	return out
}
