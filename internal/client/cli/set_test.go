package cli

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiclient "github.com/rtirumala2025/petsync/internal/client/api"
	"github.com/rtirumala2025/petsync/internal/models"
)

func TestRunSet_QueuesChange(t *testing.T) {
	fx := newTestCli(t, &apiclient.SyncAPIMock{}, &scriptedIO{})
	saveTestSession(t, fx.store)

	require.NoError(t, fx.cli.runSet(context.Background(), []string{"coins", "25"}))

	records, err := fx.store.Queue("user-1").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.JSONEq(t, `{"coins":25}`, string(records[0].Snapshot))
}

func TestRunSet_BuildsOnQueuedSnapshot(t *testing.T) {
	fx := newTestCli(t, &apiclient.SyncAPIMock{}, &scriptedIO{})
	saveTestSession(t, fx.store)

	require.NoError(t, fx.cli.runSet(context.Background(), []string{"coins", "25"}))
	require.NoError(t, fx.cli.runSet(context.Background(), []string{"food", "3"}))

	records, err := fx.store.Queue("user-1").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"coins":25,"food":3}`, string(records[1].Snapshot))
}

func TestRunSet_StartsFromCachedState(t *testing.T) {
	fx := newTestCli(t, &apiclient.SyncAPIMock{}, &scriptedIO{})
	saveTestSession(t, fx.store)

	require.NoError(t, fx.store.StateCache("user-1").SaveState(context.Background(), &models.SyncState{
		Snapshot:     json.RawMessage(`{"coins":10,"name":"Biscuit"}`),
		Version:      4,
		LastModified: time.Now(),
	}))

	require.NoError(t, fx.cli.runSet(context.Background(), []string{"coins", "11"}))

	records, err := fx.store.Queue("user-1").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.JSONEq(t, `{"coins":11,"name":"Biscuit"}`, string(records[0].Snapshot))
}

func TestRunSet_PlainStringValue(t *testing.T) {
	fx := newTestCli(t, &apiclient.SyncAPIMock{}, &scriptedIO{})
	saveTestSession(t, fx.store)

	require.NoError(t, fx.cli.runSet(context.Background(), []string{"name", "Biscuit"}))

	records, err := fx.store.Queue("user-1").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.JSONEq(t, `{"name":"Biscuit"}`, string(records[0].Snapshot))
}

func TestRunSet_RequiresLogin(t *testing.T) {
	fx := newTestCli(t, &apiclient.SyncAPIMock{}, &scriptedIO{})

	err := fx.cli.runSet(context.Background(), []string{"coins", "25"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authenticated")
}

func TestRunSet_RequiresFieldAndValue(t *testing.T) {
	fx := newTestCli(t, &apiclient.SyncAPIMock{}, &scriptedIO{})

	err := fx.cli.runSet(context.Background(), []string{"coins"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage")
}
