// Package merge implements last-write-wins reconciliation of two snapshot
// documents. It is used by the server when a push arrives with a stale
// base version, and reports every overridden field as a conflict so the
// client can surface what diverged.
package merge

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/rtirumala2025/petsync/internal/models"
)

// Granularity selects how much of the snapshot a single conflict covers.
// Field-level merge only makes sense when snapshots are JSON objects;
// anything else degrades to whole-snapshot comparison.
type Granularity string

const (
	// FieldLevel merges per top-level field of the snapshot object.
	FieldLevel Granularity = "field"

	// SnapshotLevel treats the snapshot as an indivisible document.
	SnapshotLevel Granularity = "snapshot"
)

// SnapshotField is the conflict field name used when the whole snapshot
// diverged rather than an individual key.
const SnapshotField = "snapshot"

// Input carries both sides of a diverged state. Local is the client's
// pushed snapshot, Remote the server's current one.
type Input struct {
	LocalMod     time.Time
	RemoteMod    time.Time
	LocalDevice  string
	RemoteDevice string
	Local        models.Snapshot
	Remote       models.Snapshot
}

// Result is the reconciled snapshot plus the conflicts that explain it.
// Changed reports whether Merged differs from Remote, i.e. whether the
// server needs to apply a new write at all. A retried push whose content
// the server already holds produces Changed == false, which is what makes
// replays idempotent.
type Result struct {
	Merged    models.Snapshot
	Conflicts []models.Conflict
	Changed   bool
}

// Merge reconciles local and remote according to the configured
// granularity. The newer side wins per last-modified timestamp; equal
// timestamps are broken by device id so the outcome is deterministic on
// every replica.
func Merge(in Input, g Granularity) (*Result, error) {
	if g == FieldLevel {
		res, ok, err := mergeFields(in)
		if err != nil {
			return nil, err
		}
		if ok {
			return res, nil
		}
		// Not an object on one of the sides, fall through.
	}
	return mergeWhole(in), nil
}

// localWins applies the LWW rule: newer timestamp wins, ties are broken
// by lexicographically larger device id.
func localWins(in Input) bool {
	if in.LocalMod.After(in.RemoteMod) {
		return true
	}
	if in.LocalMod.Before(in.RemoteMod) {
		return false
	}
	return in.LocalDevice > in.RemoteDevice
}

func mergeWhole(in Input) *Result {
	if jsonEqual(in.Local, in.Remote) {
		return &Result{Merged: in.Remote, Changed: false}
	}

	conflict := models.Conflict{
		Field:       SnapshotField,
		LocalValue:  in.Local,
		RemoteValue: in.Remote,
	}

	if localWins(in) {
		conflict.Resolution = models.ResolutionClientWins
		return &Result{
			Merged:    in.Local,
			Conflicts: []models.Conflict{conflict},
			Changed:   true,
		}
	}

	conflict.Resolution = models.ResolutionServerWins
	return &Result{
		Merged:    in.Remote,
		Conflicts: []models.Conflict{conflict},
		Changed:   false,
	}
}

// mergeFields merges per top-level key. The second return value is false
// when either side is not a JSON object.
func mergeFields(in Input) (*Result, bool, error) {
	local, ok := decodeObject(in.Local)
	if !ok {
		return nil, false, nil
	}
	remote, ok := decodeObject(in.Remote)
	if !ok {
		return nil, false, nil
	}

	merged := make(map[string]json.RawMessage, len(remote))
	var conflicts []models.Conflict
	changed := false
	preferLocal := localWins(in)

	for field, remoteValue := range remote {
		merged[field] = remoteValue
	}

	for field, localValue := range local {
		remoteValue, exists := remote[field]
		if !exists {
			// Additive field, no divergence to report.
			merged[field] = localValue
			changed = true
			continue
		}
		if jsonEqual(localValue, remoteValue) {
			continue
		}

		conflict := models.Conflict{
			Field:       field,
			LocalValue:  localValue,
			RemoteValue: remoteValue,
		}
		if preferLocal {
			conflict.Resolution = models.ResolutionClientWins
			merged[field] = localValue
			changed = true
		} else {
			conflict.Resolution = models.ResolutionServerWins
		}
		conflicts = append(conflicts, conflict)
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal merged snapshot: %w", err)
	}

	return &Result{Merged: out, Conflicts: conflicts, Changed: changed}, true, nil
}

// decodeObject returns the top-level fields of the document, or false if
// it is not a JSON object.
func decodeObject(doc models.Snapshot) (map[string]json.RawMessage, bool) {
	if len(doc) == 0 {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// jsonEqual compares two JSON documents structurally, ignoring key order
// and whitespace.
func jsonEqual(a, b json.RawMessage) bool {
	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}
