// Package realtime subscribes to server change notifications over a
// websocket and nudges the sync engine to re-pull when another device
// mutates shared state.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sethvargo/go-retry"

	"github.com/rtirumala2025/petsync/pkg/api"
)

const (
	backoffBase = time.Second
	backoffCap  = 30 * time.Second

	// stableSession is how long a subscription must live before the
	// reconnect backoff resets.
	stableSession = time.Minute
)

// Config wires a Bridge to its collaborators.
type Config struct {
	// URL is the websocket subscribe endpoint.
	URL string

	// DeviceID is the local device; notifications it originated are
	// dropped while a flush is in flight to avoid self-triggered churn.
	DeviceID string

	// Token returns a current access token for the subscription.
	Token func(ctx context.Context) (string, error)

	// Notify is invoked for every accepted change notification.
	Notify func(n api.ChangeNotification)

	// FlushInFlight reports whether the engine is mid-flush.
	FlushInFlight func() bool

	Logger *slog.Logger
}

// Bridge maintains the realtime subscription. Subscription failures never
// propagate; the bridge resubscribes with bounded exponential backoff and
// the engine degrades to poll-less operation in between.
type Bridge struct {
	cfg Config
}

// New creates a realtime bridge.
func New(cfg Config) *Bridge {
	return &Bridge{cfg: cfg}
}

// Run subscribes and processes notifications until ctx is canceled.
func (b *Bridge) Run(ctx context.Context) {
	backoff := b.newBackoff()

	for ctx.Err() == nil {
		started := time.Now()
		err := b.session(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			b.cfg.Logger.Warn("realtime subscription lost", "error", err)
		}

		if time.Since(started) >= stableSession {
			backoff = b.newBackoff()
		}

		delay, _ := backoff.Next()
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (b *Bridge) newBackoff() retry.Backoff {
	return retry.WithCappedDuration(backoffCap, retry.NewExponential(backoffBase))
}

// session runs one subscription: dial, then read notifications until the
// connection drops.
func (b *Bridge) session(ctx context.Context) error {
	token, err := b.cfg.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	conn, _, err := websocket.Dial(ctx, b.cfg.URL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + token}},
	})
	if err != nil {
		return fmt.Errorf("failed to dial subscription: %w", err)
	}
	defer conn.CloseNow()

	b.cfg.Logger.Debug("realtime subscription established", "url", b.cfg.URL)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("subscription read failed: %w", err)
		}

		var notification api.ChangeNotification
		if err := json.Unmarshal(data, &notification); err != nil {
			b.cfg.Logger.Warn("ignoring malformed notification", "error", err)
			continue
		}

		if notification.DeviceID == b.cfg.DeviceID && b.cfg.FlushInFlight() {
			// Our own push echoing back mid-flush; the flush outcome
			// already refreshes the cached state.
			b.cfg.Logger.Debug("skipping self-originated notification",
				"version", notification.Version)
			continue
		}

		b.cfg.Notify(notification)
	}
}
