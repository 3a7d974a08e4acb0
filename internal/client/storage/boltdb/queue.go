package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/rtirumala2025/petsync/internal/client/storage"
	"github.com/rtirumala2025/petsync/internal/models"
)

// Queue is the bbolt-backed durable change queue for one user.
// Records are stored under monotonically increasing sequence keys, so a
// forward cursor walk yields them in enqueue order.
type Queue struct {
	storage *Storage
	userID  []byte
}

var _ storage.ChangeQueue = (*Queue)(nil)

// Enqueue appends a record and assigns its sequence number.
func (q *Queue) Enqueue(ctx context.Context, record *models.ChangeRecord) error {
	if q.storage.db == nil {
		return storage.ErrStorageClosed
	}

	err := q.storage.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.Bucket(bucketQueue).CreateBucketIfNotExists(q.userID)
		if err != nil {
			return fmt.Errorf("failed to create user queue bucket: %w", err)
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}
		record.Seq = seq

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal change record: %w", err)
		}

		if err := bucket.Put(seqKey(seq), data); err != nil {
			return fmt.Errorf("failed to save change record: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("enqueue transaction failed: %w", err)
	}

	return nil
}

// Load returns all pending records in enqueue order.
func (q *Queue) Load(ctx context.Context) ([]*models.ChangeRecord, error) {
	if q.storage.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var records []*models.ChangeRecord

	err := q.storage.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue).Bucket(q.userID)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var record models.ChangeRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("failed to unmarshal change record: %w", err)
			}
			records = append(records, &record)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}

	return records, nil
}

// Remove deletes an acknowledged record by ID.
func (q *Queue) Remove(ctx context.Context, id string) error {
	if q.storage.db == nil {
		return storage.ErrStorageClosed
	}

	err := q.storage.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue).Bucket(q.userID)
		if bucket == nil {
			return storage.ErrRecordNotFound
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var record models.ChangeRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("failed to unmarshal change record: %w", err)
			}
			if record.ID == id {
				if err := bucket.Delete(k); err != nil {
					return fmt.Errorf("failed to delete change record: %w", err)
				}
				return nil
			}
		}
		return storage.ErrRecordNotFound
	})
	if err != nil {
		if err == storage.ErrRecordNotFound {
			return err
		}
		return fmt.Errorf("remove transaction failed: %w", err)
	}

	return nil
}

// Len returns the number of pending records.
func (q *Queue) Len(ctx context.Context) (int, error) {
	if q.storage.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var count int
	err := q.storage.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue).Bucket(q.userID)
		if bucket == nil {
			return nil
		}
		count = bucket.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}

	return count, nil
}

// seqKey converts a sequence number into a big-endian key so that byte
// order matches numeric order.
func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
