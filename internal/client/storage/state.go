package storage

import (
	"context"

	"github.com/rtirumala2025/petsync/internal/models"
)

//go:generate moq -out state_mock.go . StateCache

// StateCache persists the client's last known server-authoritative state
// so the engine can operate offline and resume with a meaningful base
// version after a restart.
type StateCache interface {
	// SaveState overwrites the cached state.
	SaveState(ctx context.Context, state *models.SyncState) error

	// GetState returns the cached state.
	// Returns ErrStateNotFound before the first successful pull.
	GetState(ctx context.Context) (*models.SyncState, error)
}
