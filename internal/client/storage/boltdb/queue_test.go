package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtirumala2025/petsync/internal/client/storage"
	"github.com/rtirumala2025/petsync/internal/models"
)

func newRecord(happiness int) *models.ChangeRecord {
	snapshot, _ := json.Marshal(map[string]int{"happiness": happiness})
	return &models.ChangeRecord{
		ID:           uuid.New().String(),
		Snapshot:     snapshot,
		LastModified: time.Now().UTC(),
		EnqueuedAt:   time.Now().UTC(),
	}
}

func TestQueue_EnqueueLoad_FIFO(t *testing.T) {
	store, _ := newTestStorage(t)
	queue := store.Queue("user-1")
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		rec := newRecord(i)
		ids = append(ids, rec.ID)
		require.NoError(t, queue.Enqueue(ctx, rec))
		assert.NotZero(t, rec.Seq, "sequence must be assigned on enqueue")
	}

	records, err := queue.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 5)

	for i, rec := range records {
		assert.Equal(t, ids[i], rec.ID, "load must preserve enqueue order")
	}
}

func TestQueue_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	store, dbPath := newTestStorage(t)

	rec := newRecord(80)
	require.NoError(t, store.Queue("user-1").Enqueue(ctx, rec))
	require.NoError(t, store.Close())

	reopened, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.Queue("user-1").Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.JSONEq(t, string(rec.Snapshot), string(records[0].Snapshot))
}

func TestQueue_Remove(t *testing.T) {
	store, _ := newTestStorage(t)
	queue := store.Queue("user-1")
	ctx := context.Background()

	first := newRecord(1)
	second := newRecord(2)
	require.NoError(t, queue.Enqueue(ctx, first))
	require.NoError(t, queue.Enqueue(ctx, second))

	require.NoError(t, queue.Remove(ctx, first.ID))

	records, err := queue.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, second.ID, records[0].ID)

	count, err := queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestQueue_RemoveMissing(t *testing.T) {
	store, _ := newTestStorage(t)
	queue := store.Queue("user-1")
	ctx := context.Background()

	err := queue.Remove(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)

	require.NoError(t, queue.Enqueue(ctx, newRecord(1)))
	err = queue.Remove(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestQueue_SequenceContinuesAfterDrain(t *testing.T) {
	// Sequence numbers must not be reused after the queue drains, so
	// order stays meaningful across enqueue/remove cycles.
	store, _ := newTestStorage(t)
	queue := store.Queue("user-1")
	ctx := context.Background()

	first := newRecord(1)
	require.NoError(t, queue.Enqueue(ctx, first))
	require.NoError(t, queue.Remove(ctx, first.ID))

	second := newRecord(2)
	require.NoError(t, queue.Enqueue(ctx, second))
	assert.Greater(t, second.Seq, first.Seq)
}

func TestQueue_PerUserIsolation(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Queue("user-1").Enqueue(ctx, newRecord(1)))
	require.NoError(t, store.Queue("user-2").Enqueue(ctx, newRecord(2)))

	for i, userID := range []string{"user-1", "user-2"} {
		records, err := store.Queue(userID).Load(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1, "user %s", userID)
		assert.JSONEq(t, fmt.Sprintf(`{"happiness":%d}`, i+1), string(records[0].Snapshot))
	}
}
