package engine

import (
	"github.com/rtirumala2025/petsync/internal/models"
)

// Resolution is the outcome of folding a conflicted push response into
// local state. Accepted is always a consistent snapshot the engine can
// keep operating on; Unresolved is surfaced to the UI collaborator until
// explicitly acknowledged.
type Resolution struct {
	Accepted   models.Snapshot
	Unresolved []models.Conflict
}

// Resolver decides how to update local state when the server reports
// conflicts. The engine never blocks on manual resolution: a resolver
// must always produce an accepted snapshot.
type Resolver interface {
	Resolve(conflicts []models.Conflict, local, remote models.Snapshot) *Resolution
}

// ServerWins is the default policy: the server snapshot wins for every
// reported conflict, favoring consistency over local optimism. All
// conflicts are still surfaced so a human can re-push a corrective
// change, which simply becomes a new queued record.
type ServerWins struct{}

var _ Resolver = ServerWins{}

// Resolve accepts the remote snapshot and surfaces every conflict.
func (ServerWins) Resolve(conflicts []models.Conflict, local, remote models.Snapshot) *Resolution {
	accepted := make(models.Snapshot, len(remote))
	copy(accepted, remote)

	unresolved := make([]models.Conflict, len(conflicts))
	copy(unresolved, conflicts)

	return &Resolution{
		Accepted:   accepted,
		Unresolved: unresolved,
	}
}
