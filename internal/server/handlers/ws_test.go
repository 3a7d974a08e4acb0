package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtirumala2025/petsync/internal/server/notify"
	"github.com/rtirumala2025/petsync/pkg/api"
)

func TestWSHandler_StreamsNotifications(t *testing.T) {
	hub := notify.New(testLogger(), nil)
	h := NewWSHandler(testLogger(), hub)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Stand-in for the auth middleware.
		ctx := context.WithValue(r.Context(), UserIDKey, "user-1")
		h.HandleSubscribe(w, r.WithContext(ctx))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	wsAddr := "ws" + server.URL[len("http"):]
	conn, _, err := websocket.Dial(ctx, wsAddr, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	// The subscriber registers asynchronously after the upgrade.
	require.Eventually(t, func() bool {
		_ = hub.Publish(context.Background(), api.ChangeNotification{
			UserID:   "user-1",
			DeviceID: "device-b",
			Version:  4,
		})
		readCtx, readCancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer readCancel()
		_, data, readErr := conn.Read(readCtx)
		if readErr != nil {
			return false
		}
		var n api.ChangeNotification
		require.NoError(t, json.Unmarshal(data, &n))
		assert.Equal(t, int64(4), n.Version)
		assert.Equal(t, "device-b", n.DeviceID)
		return true
	}, 3*time.Second, 50*time.Millisecond)
}

func TestWSHandler_ReleasesSubscriptionWhenClientCloses(t *testing.T) {
	hub := notify.New(testLogger(), nil)
	h := NewWSHandler(testLogger(), hub)

	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), UserIDKey, "user-1")
		h.HandleSubscribe(w, r.WithContext(ctx))
		close(done)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	wsAddr := "ws" + server.URL[len("http"):]
	conn, _, err := websocket.Dial(ctx, wsAddr, nil)
	require.NoError(t, err)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))

	// The close frame alone must end the handler; no notification write
	// is needed to notice the peer is gone.
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after client close")
	}
}

func TestWSHandler_RequiresAuth(t *testing.T) {
	hub := notify.New(testLogger(), nil)
	h := NewWSHandler(testLogger(), hub)

	rec := httptest.NewRecorder()
	h.HandleSubscribe(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sync/subscribe", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
