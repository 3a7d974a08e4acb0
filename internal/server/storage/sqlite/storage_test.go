package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rtirumala2025/petsync/internal/merge"
	"github.com/rtirumala2025/petsync/internal/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	storage, err := New(context.Background(), ":memory:", merge.FieldLevel)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, storage.Close())
	})

	return storage
}

func createTestUser(t *testing.T, s *Storage, username string) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: "$2a$10$test-hash",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func TestStorage_MigrationsApply(t *testing.T) {
	s := newTestStorage(t)

	// All tables exist after migration.
	for _, table := range []string{"users", "refresh_tokens", "sync_states", "sync_conflicts"} {
		var name string
		err := s.DB().QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s missing", table)
	}
}
