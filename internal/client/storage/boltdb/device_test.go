package boltdb

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceStore_GetOrCreate_Stable(t *testing.T) {
	store, _ := newTestStorage(t)
	devices := store.Devices("user-1")
	ctx := context.Background()

	first, err := devices.GetOrCreate(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err, "device id must be a UUID")

	second, err := devices.GetOrCreate(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDeviceStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	store, dbPath := newTestStorage(t)

	created, err := store.Devices("user-1").GetOrCreate(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Devices("user-1").GetOrCreate(ctx)
	require.NoError(t, err)
	assert.Equal(t, created, loaded)
}

func TestDeviceStore_PerUserIDs(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	one, err := store.Devices("user-1").GetOrCreate(ctx)
	require.NoError(t, err)
	two, err := store.Devices("user-2").GetOrCreate(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, one, two)
}
