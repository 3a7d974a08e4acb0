package boltdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/rtirumala2025/petsync/internal/client/storage"
)

// DeviceStore persists the per-installation device identifier for one user.
type DeviceStore struct {
	storage *Storage
	userID  []byte
}

var _ storage.DeviceStore = (*DeviceStore)(nil)

// GetOrCreate returns the stored device id, generating one on first call.
// The generated id stays stable for the lifetime of the installation.
func (d *DeviceStore) GetOrCreate(ctx context.Context) (string, error) {
	if d.storage.db == nil {
		return "", storage.ErrStorageClosed
	}

	var deviceID string

	err := d.storage.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDevice)

		if existing := bucket.Get(d.userID); existing != nil {
			deviceID = string(existing)
			return nil
		}

		deviceID = uuid.New().String()
		if err := bucket.Put(d.userID, []byte(deviceID)); err != nil {
			return fmt.Errorf("failed to save device id: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("device id transaction failed: %w", err)
	}

	return deviceID, nil
}
