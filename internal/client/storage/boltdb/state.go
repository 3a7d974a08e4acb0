package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/rtirumala2025/petsync/internal/client/storage"
	"github.com/rtirumala2025/petsync/internal/models"
)

// StateCache persists the last known server state for one user.
type StateCache struct {
	storage *Storage
	userID  []byte
}

var _ storage.StateCache = (*StateCache)(nil)

// SaveState overwrites the cached sync state.
func (c *StateCache) SaveState(ctx context.Context, state *models.SyncState) error {
	if c.storage.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal sync state: %w", err)
	}

	err = c.storage.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketState).Put(c.userID, data); err != nil {
			return fmt.Errorf("failed to save sync state: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("state transaction failed: %w", err)
	}

	return nil
}

// GetState returns the cached sync state.
func (c *StateCache) GetState(ctx context.Context) (*models.SyncState, error) {
	if c.storage.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var state *models.SyncState

	err := c.storage.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketState).Get(c.userID)
		if data == nil {
			return storage.ErrStateNotFound
		}

		state = &models.SyncState{}
		if err := json.Unmarshal(data, state); err != nil {
			return fmt.Errorf("failed to unmarshal sync state: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return state, nil
}
