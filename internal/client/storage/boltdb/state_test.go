package boltdb

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtirumala2025/petsync/internal/client/storage"
	"github.com/rtirumala2025/petsync/internal/models"
)

func TestStateCache_SaveGet(t *testing.T) {
	store, _ := newTestStorage(t)
	cache := store.StateCache("user-1")
	ctx := context.Background()

	state := &models.SyncState{
		Snapshot:     json.RawMessage(`{"happiness":80,"coins":40}`),
		Version:      6,
		LastModified: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		LastDeviceID: "device-a",
	}
	require.NoError(t, cache.SaveState(ctx, state))

	loaded, err := cache.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), loaded.Version)
	assert.Equal(t, "device-a", loaded.LastDeviceID)
	assert.JSONEq(t, string(state.Snapshot), string(loaded.Snapshot))
	assert.True(t, state.LastModified.Equal(loaded.LastModified))
}

func TestStateCache_GetMissing(t *testing.T) {
	store, _ := newTestStorage(t)

	_, err := store.StateCache("user-1").GetState(context.Background())
	assert.ErrorIs(t, err, storage.ErrStateNotFound)
}

func TestStateCache_Overwrite(t *testing.T) {
	store, _ := newTestStorage(t)
	cache := store.StateCache("user-1")
	ctx := context.Background()

	require.NoError(t, cache.SaveState(ctx, &models.SyncState{Version: 1, Snapshot: json.RawMessage(`{}`)}))
	require.NoError(t, cache.SaveState(ctx, &models.SyncState{Version: 2, Snapshot: json.RawMessage(`{"coins":1}`)}))

	loaded, err := cache.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version)
}
