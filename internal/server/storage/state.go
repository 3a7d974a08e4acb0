package storage

import (
	"context"
	"time"

	"github.com/rtirumala2025/petsync/internal/models"
)

// PushInput is one client change applied on top of an assumed base
// version.
type PushInput struct {
	LastModified time.Time
	DeviceID     string
	Snapshot     models.Snapshot
	BaseVersion  int64
}

// PushOutcome is the result of applying a push. State is always the
// current authoritative state afterwards. Changed reports whether a new
// version was written; a replayed push the server already holds leaves
// the version untouched.
type PushOutcome struct {
	State     *models.SyncState
	Conflicts []models.Conflict
	Changed   bool
}

// StateStorage defines the interface for sync state persistence. The
// version check, merge and write happen atomically inside ApplyPush so
// concurrent pushes from different devices serialize on the storage.
type StateStorage interface {
	// GetState returns the current state and any standing conflicts
	// from the last merged push.
	// Returns ErrStateNotFound before the user's first push.
	GetState(ctx context.Context, userID string) (*models.SyncState, []models.Conflict, error)

	// ApplyPush applies one change. A stale base version is not an
	// error: the snapshots are merged and the losing fields reported
	// as conflicts in the outcome.
	ApplyPush(ctx context.Context, userID string, in PushInput) (*PushOutcome, error)
}
