package cli

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiclient "github.com/rtirumala2025/petsync/internal/client/api"
	"github.com/rtirumala2025/petsync/pkg/api"
)

// newSyncAPIMock serves a tiny in-memory sync endpoint: Pull returns the
// current state, Push fast-forwards the version and adopts the snapshot.
func newSyncAPIMock() *apiclient.SyncAPIMock {
	var version atomic.Int64
	version.Store(1)
	snapshot := atomic.Value{}
	snapshot.Store(json.RawMessage(`{}`))

	mock := &apiclient.SyncAPIMock{}
	mock.PullFunc = func(ctx context.Context, accessToken string) (*api.SyncEnvelope, error) {
		return &api.SyncEnvelope{
			State: api.SyncState{
				Version:      version.Load(),
				Snapshot:     snapshot.Load().(json.RawMessage),
				LastModified: time.Now(),
			},
		}, nil
	}
	mock.PushFunc = func(ctx context.Context, accessToken string, req api.PushRequest) (*api.SyncEnvelope, error) {
		snapshot.Store(req.Snapshot)
		return &api.SyncEnvelope{
			State: api.SyncState{
				Version:      version.Add(1),
				Snapshot:     req.Snapshot,
				LastModified: req.LastModified,
				LastDeviceID: req.DeviceID,
			},
		}, nil
	}
	return mock
}

func TestRunSync_FlushesQueue(t *testing.T) {
	apiMock := newSyncAPIMock()
	io := &scriptedIO{}
	fx := newTestCli(t, apiMock, io)
	saveTestSession(t, fx.store)

	require.NoError(t, fx.cli.runSet(context.Background(), []string{"coins", "25"}))
	require.NoError(t, fx.cli.runSync(context.Background()))

	require.Len(t, apiMock.PushCalls(), 1)
	assert.JSONEq(t, `{"coins":25}`, string(apiMock.PushCalls()[0].Req.Snapshot))

	pending, err := fx.store.Queue("user-1").Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, pending)

	assert.Contains(t, io.printed(), "Synchronization complete.")
	assert.Contains(t, io.printed(), "Server version: 2")
}

func TestRunSync_NothingQueued(t *testing.T) {
	apiMock := newSyncAPIMock()
	fx := newTestCli(t, apiMock, &scriptedIO{})
	saveTestSession(t, fx.store)

	require.NoError(t, fx.cli.runSync(context.Background()))

	assert.Empty(t, apiMock.PushCalls())
	require.Len(t, apiMock.PullCalls(), 1)
}

func TestRunSync_SurfacesConflicts(t *testing.T) {
	apiMock := newSyncAPIMock()
	apiMock.PushFunc = func(ctx context.Context, accessToken string, req api.PushRequest) (*api.SyncEnvelope, error) {
		return &api.SyncEnvelope{
			State: api.SyncState{
				Version:      5,
				Snapshot:     json.RawMessage(`{"coins":40}`),
				LastModified: time.Now(),
			},
			Conflicts: []api.Conflict{{
				Field:       "coins",
				Resolution:  api.ResolutionServerWins,
				LocalValue:  json.RawMessage(`25`),
				RemoteValue: json.RawMessage(`40`),
			}},
		}, nil
	}

	io := &scriptedIO{}
	fx := newTestCli(t, apiMock, io)
	saveTestSession(t, fx.store)

	require.NoError(t, fx.cli.runSet(context.Background(), []string{"coins", "25"}))
	require.NoError(t, fx.cli.runSync(context.Background()))

	printed := io.printed()
	assert.Contains(t, printed, "Resolved 1 conflict(s)")
	assert.Contains(t, printed, "coins")
}

func TestRunSync_ServerUnreachable(t *testing.T) {
	apiMock := &apiclient.SyncAPIMock{
		PullFunc: func(ctx context.Context, accessToken string) (*api.SyncEnvelope, error) {
			return nil, apiclient.ErrNetwork
		},
	}
	fx := newTestCli(t, apiMock, &scriptedIO{})
	saveTestSession(t, fx.store)

	err := fx.cli.runSync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "changes remain queued")
}

func TestRunSync_RequiresLogin(t *testing.T) {
	fx := newTestCli(t, &apiclient.SyncAPIMock{}, &scriptedIO{})

	err := fx.cli.runSync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authenticated")
}

func TestWSURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:8080/api/v1/sync/subscribe", wsURL("http://localhost:8080"))
	assert.Equal(t, "wss://example.com/api/v1/sync/subscribe", wsURL("https://example.com"))
}
