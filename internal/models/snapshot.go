package models

import (
	"encoding/json"
	"time"
)

// Snapshot is an opaque serialized application state document (pet stats,
// wallet, inventory, quest progress). The engine never interprets its
// fields; only the server-side merge looks at its top-level structure.
type Snapshot = json.RawMessage

// ChangeRecord is one pending local change awaiting acknowledgment by the
// server. Records are immutable once created and are removed only after a
// definitive push outcome (success or conflict).
type ChangeRecord struct {
	LastModified time.Time `json:"last_modified"` // when the mutation happened upstream
	EnqueuedAt   time.Time `json:"enqueued_at"`
	ID           string    `json:"id"` // UUID, used for queue removal
	Snapshot     Snapshot  `json:"snapshot"`
	Seq          uint64    `json:"seq"` // assigned by the durable queue, defines flush order
}

// Clone creates a deep copy of the change record.
func (r *ChangeRecord) Clone() *ChangeRecord {
	snapshot := make(Snapshot, len(r.Snapshot))
	copy(snapshot, r.Snapshot)

	return &ChangeRecord{
		ID:           r.ID,
		Snapshot:     snapshot,
		LastModified: r.LastModified,
		EnqueuedAt:   r.EnqueuedAt,
		Seq:          r.Seq,
	}
}

// SyncState is the client's cached copy of the server-authoritative state.
// Version is monotonic and server-assigned; the client never invents one.
type SyncState struct {
	LastModified time.Time `json:"last_modified"`
	LastDeviceID string    `json:"last_device_id"`
	Snapshot     Snapshot  `json:"snapshot"`
	Version      int64     `json:"version"`
}

// Clone creates a deep copy of the sync state.
func (s *SyncState) Clone() *SyncState {
	snapshot := make(Snapshot, len(s.Snapshot))
	copy(snapshot, s.Snapshot)

	return &SyncState{
		Snapshot:     snapshot,
		Version:      s.Version,
		LastModified: s.LastModified,
		LastDeviceID: s.LastDeviceID,
	}
}

// Resolution describes how a conflicting field was settled.
type Resolution string

const (
	ResolutionServerWins Resolution = "server_wins"
	ResolutionClientWins Resolution = "client_wins"
	ResolutionManual     Resolution = "manual"
)

// Conflict is a server-reported discrepancy between the client's assumed
// base version and the server's current state. Surfaced to the UI
// collaborator for visibility; cleared explicitly or superseded by the
// next successful sync.
type Conflict struct {
	Field       string          `json:"field"`
	Resolution  Resolution      `json:"resolution"`
	LocalValue  json.RawMessage `json:"local_value,omitempty"`
	RemoteValue json.RawMessage `json:"remote_value,omitempty"`
}
