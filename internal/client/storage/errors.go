package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no session data exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrRecordNotFound indicates that a queued change record was not found
	ErrRecordNotFound = errors.New("change record not found")

	// ErrStateNotFound indicates that no cached sync state exists yet
	ErrStateNotFound = errors.New("cached sync state not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
