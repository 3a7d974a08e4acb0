package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/rtirumala2025/petsync/internal/server/notify"
)

// WSHandler upgrades subscribe requests and streams change
// notifications for the authenticated user.
type WSHandler struct {
	logger *slog.Logger
	hub    *notify.Hub
}

// NewWSHandler creates a new websocket subscription handler.
func NewWSHandler(logger *slog.Logger, hub *notify.Hub) *WSHandler {
	return &WSHandler{
		logger: logger,
		hub:    hub,
	}
}

// HandleSubscribe handles GET /api/v1/sync/subscribe.
func (h *WSHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		writeError(h.logger, w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed", "user_id", userID, "error", err)
		return
	}
	defer conn.CloseNow()

	notifications, cancel := h.hub.Subscribe(userID)
	defer cancel()

	h.logger.Info("realtime subscriber connected", "user_id", userID)

	// The subscription only ever writes. CloseRead keeps processing
	// control frames and cancels the context as soon as the peer closes
	// or the connection drops, so idle subscribers do not linger.
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-notifications:
			data, err := json.Marshal(n)
			if err != nil {
				h.logger.Error("failed to marshal notification", "error", err)
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				h.logger.Debug("realtime subscriber gone",
					"user_id", userID, "error", err)
				return
			}
		}
	}
}
