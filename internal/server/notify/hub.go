// Package notify fans change notifications out to realtime subscribers.
// With a Redis client attached, notifications travel through pub/sub so
// every server instance reaches its own websocket clients.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/rtirumala2025/petsync/pkg/api"
)

// channel is the Redis pub/sub channel carrying change notifications.
const channel = "petsync:changes"

// subscriberBuffer bounds per-subscriber queues. A subscriber that falls
// this far behind loses notifications, which is safe: consumers re-pull
// full state rather than applying payloads.
const subscriberBuffer = 8

// Hub routes change notifications to per-user subscribers.
type Hub struct {
	logger *slog.Logger
	rdb    *redis.Client

	mu   sync.Mutex
	subs map[string]map[chan api.ChangeNotification]struct{}
}

// New creates a hub. rdb may be nil for single-instance deployments;
// notifications then stay in-process.
func New(logger *slog.Logger, rdb *redis.Client) *Hub {
	return &Hub{
		logger: logger,
		rdb:    rdb,
		subs:   make(map[string]map[chan api.ChangeNotification]struct{}),
	}
}

// Subscribe registers a listener for one user's notifications. The
// returned cancel func must be called when the listener goes away.
func (h *Hub) Subscribe(userID string) (<-chan api.ChangeNotification, func()) {
	ch := make(chan api.ChangeNotification, subscriberBuffer)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan api.ChangeNotification]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
	}

	return ch, cancel
}

// Publish announces an applied change. With Redis attached the message
// goes through pub/sub and comes back via Run; otherwise it is
// dispatched to local subscribers directly.
func (h *Hub) Publish(ctx context.Context, n api.ChangeNotification) error {
	if h.rdb == nil {
		h.dispatch(n)
		return nil
	}

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := h.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Run consumes the Redis subscription and dispatches to local
// subscribers until ctx is canceled. No-op without a Redis client.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		<-ctx.Done()
		return
	}

	sub := h.rdb.Subscribe(ctx, channel)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var n api.ChangeNotification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				h.logger.Warn("ignoring malformed pubsub message", "error", err)
				continue
			}
			h.dispatch(n)
		}
	}
}

// dispatch delivers to local subscribers of the notification's user.
// Slow subscribers are skipped rather than blocking the hub.
func (h *Hub) dispatch(n api.ChangeNotification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[n.UserID] {
		select {
		case ch <- n:
		default:
			h.logger.Debug("dropping notification for slow subscriber",
				"user_id", n.UserID, "version", n.Version)
		}
	}
}
