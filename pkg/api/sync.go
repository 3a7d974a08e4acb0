package api

import (
	"encoding/json"
	"time"
)

// SyncState is the server-authoritative view of one user's snapshot.
// Version is assigned by the server and strictly increases on every
// applied write.
type SyncState struct {
	LastModified time.Time       `json:"last_modified"`
	LastDeviceID string          `json:"last_device_id"`
	Snapshot     json.RawMessage `json:"snapshot"`
	Version      int64           `json:"version"`
}

// Conflict describes one field (or the whole snapshot) where the client's
// assumed base diverged from the server's state. Conflicts are data, not
// errors: the push that produced them still succeeded.
type Conflict struct {
	Field       string          `json:"field"`
	Resolution  string          `json:"resolution"`
	LocalValue  json.RawMessage `json:"local_value,omitempty"`
	RemoteValue json.RawMessage `json:"remote_value,omitempty"`
}

// Conflict resolution outcomes reported by the server or recorded by the
// client-side resolver.
const (
	ResolutionServerWins = "server_wins"
	ResolutionClientWins = "client_wins"
	ResolutionManual     = "manual"
)

// PushRequest applies one queued change on top of the version the client
// believes is current.
type PushRequest struct {
	LastModified time.Time       `json:"last_modified"`
	DeviceID     string          `json:"device_id"`
	Snapshot     json.RawMessage `json:"snapshot"`
	Version      int64           `json:"version"` // base version for the optimistic check
}

// SyncEnvelope is the response body for both GET and POST /api/v1/sync.
type SyncEnvelope struct {
	State     SyncState  `json:"state"`
	Conflicts []Conflict `json:"conflicts"`
}

// ChangeNotification is delivered over the realtime subscription whenever
// a push is applied. It only signals that something changed; subscribers
// re-pull the full state rather than trusting the payload.
type ChangeNotification struct {
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`
	Version  int64  `json:"version"`
}
