package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/rtirumala2025/petsync/internal/client/storage"
)

var keySession = []byte("session")

// AuthStore persists the current session between CLI invocations.
type AuthStore struct {
	storage *Storage
}

var _ storage.AuthStorage = (*AuthStore)(nil)

// SaveAuth stores session data, replacing any previous session.
func (a *AuthStore) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	if a.storage.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("failed to marshal auth data: %w", err)
	}

	err = a.storage.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketAuth).Put(keySession, data); err != nil {
			return fmt.Errorf("failed to save auth data: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("auth transaction failed: %w", err)
	}

	return nil
}

// GetAuth returns the stored session.
func (a *AuthStore) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	if a.storage.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var auth *storage.AuthData

	err := a.storage.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketAuth).Get(keySession)
		if data == nil {
			return storage.ErrAuthNotFound
		}

		auth = &storage.AuthData{}
		if err := json.Unmarshal(data, auth); err != nil {
			return fmt.Errorf("failed to unmarshal auth data: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return auth, nil
}

// DeleteAuth removes the stored session.
func (a *AuthStore) DeleteAuth(ctx context.Context) error {
	if a.storage.db == nil {
		return storage.ErrStorageClosed
	}

	err := a.storage.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAuth).Delete(keySession)
	})
	if err != nil {
		return fmt.Errorf("auth delete transaction failed: %w", err)
	}

	return nil
}
