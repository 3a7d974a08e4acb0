// Package boltdb implements the client storage interfaces on top of a
// single bbolt database file. Queue, state cache and device id are keyed
// by user id so multiple accounts on one device do not cross-contaminate.
package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"
)

var (
	// BoltDB bucket names
	bucketAuth   = []byte("auth")
	bucketQueue  = []byte("queue")
	bucketState  = []byte("state")
	bucketDevice = []byte("device")
)

// Storage represents the BoltDB storage for the client.
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance.
// dbPath is the path to the BoltDB database file.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Queue returns the durable change queue for the given user.
func (s *Storage) Queue(userID string) *Queue {
	return &Queue{storage: s, userID: []byte(userID)}
}

// StateCache returns the cached sync state store for the given user.
func (s *Storage) StateCache(userID string) *StateCache {
	return &StateCache{storage: s, userID: []byte(userID)}
}

// Devices returns the device identity store for the given user.
func (s *Storage) Devices(userID string) *DeviceStore {
	return &DeviceStore{storage: s, userID: []byte(userID)}
}

// Auth returns the session store. There is at most one stored session
// per database file.
func (s *Storage) Auth() *AuthStore {
	return &AuthStore{storage: s}
}

func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAuth, bucketQueue, bucketState, bucketDevice} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}
