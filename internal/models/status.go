package models

// EngineStatus is the externally visible state of the sync engine.
// Exactly one status is active at a time; it is derived from the queue,
// connectivity and unresolved conflicts, never set directly.
type EngineStatus int

const (
	// StatusRestoring is the startup state: the persisted queue is being
	// loaded and an initial pull is in progress.
	StatusRestoring EngineStatus = iota

	// StatusIdle means the queue is empty and the cached state is current.
	StatusIdle

	// StatusSyncing means queued changes are being flushed to the server.
	StatusSyncing

	// StatusOffline means network operations are suspended; changes keep
	// accumulating in the durable queue until connectivity returns.
	StatusOffline

	// StatusConflict means at least one reconciled conflict awaits
	// acknowledgment by the collaborator.
	StatusConflict
)

// String returns the lowercase name used in logs and the CLI.
func (s EngineStatus) String() string {
	switch s {
	case StatusRestoring:
		return "restoring"
	case StatusIdle:
		return "idle"
	case StatusSyncing:
		return "syncing"
	case StatusOffline:
		return "offline"
	case StatusConflict:
		return "conflict"
	default:
		return "unknown"
	}
}
