package storage

import (
	"context"

	"github.com/rtirumala2025/petsync/internal/models"
)

//go:generate moq -out queue_mock.go . ChangeQueue

// ChangeQueue is the durable FIFO of pending local changes. Every
// mutating call persists before returning, so the queue survives process
// restarts. Entries are append/remove only, never rewritten in place,
// which keeps concurrent access from multiple processes on one device
// safe without a cross-process lock.
type ChangeQueue interface {
	// Enqueue appends a record to the queue and assigns its sequence
	// number. The record's Seq field is populated on return.
	Enqueue(ctx context.Context, record *models.ChangeRecord) error

	// Load returns all pending records in original enqueue order.
	// Used at startup to resume interrupted work.
	Load(ctx context.Context) ([]*models.ChangeRecord, error)

	// Remove deletes an acknowledged record by ID.
	// Returns ErrRecordNotFound if no such record is queued.
	Remove(ctx context.Context, id string) error

	// Len returns the number of pending records.
	Len(ctx context.Context) (int, error)
}
