package storage

import "context"

// DeviceStore hands out the stable per-installation device identifier.
// The id attributes writes and filters self-originated realtime
// notifications; it is never used for ownership or locking, so losing it
// on reinstall is acceptable.
type DeviceStore interface {
	// GetOrCreate returns the persisted device id, generating and
	// persisting a new one on first call.
	GetOrCreate(ctx context.Context) (string, error)
}
