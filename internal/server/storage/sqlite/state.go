package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rtirumala2025/petsync/internal/merge"
	"github.com/rtirumala2025/petsync/internal/models"
	"github.com/rtirumala2025/petsync/internal/server/storage"
)

// GetState returns the current state and the standing conflicts from the
// last merged push.
func (s *Storage) GetState(ctx context.Context, userID string) (*models.SyncState, []models.Conflict, error) {
	state, err := s.queryState(ctx, s.db, userID)
	if err != nil {
		return nil, nil, err
	}

	conflicts, err := s.queryConflicts(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	return state, conflicts, nil
}

// ApplyPush applies one client change. The version check, merge and
// write happen in a single transaction; with one writer connection this
// serializes concurrent pushes from different devices.
func (s *Storage) ApplyPush(ctx context.Context, userID string, in storage.PushInput) (*storage.PushOutcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, err := s.queryState(ctx, tx, userID)
	if err != nil && !errors.Is(err, storage.ErrStateNotFound) {
		return nil, err
	}

	outcome, err := s.applyPushTx(ctx, tx, userID, in, current)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit push: %w", err)
	}

	return outcome, nil
}

func (s *Storage) applyPushTx(ctx context.Context, tx *sql.Tx, userID string, in storage.PushInput, current *models.SyncState) (*storage.PushOutcome, error) {
	// First push for this user: the pushed snapshot becomes version 1.
	if current == nil {
		state := &models.SyncState{
			Version:      1,
			Snapshot:     in.Snapshot,
			LastModified: in.LastModified,
			LastDeviceID: in.DeviceID,
		}
		if err := s.insertState(ctx, tx, userID, state); err != nil {
			return nil, err
		}
		return &storage.PushOutcome{State: state, Changed: true}, nil
	}

	// Base matches the current version exactly: plain fast-forward write.
	if in.BaseVersion == current.Version {
		state := &models.SyncState{
			Version:      current.Version + 1,
			Snapshot:     in.Snapshot,
			LastModified: in.LastModified,
			LastDeviceID: in.DeviceID,
		}
		if err := s.updateState(ctx, tx, userID, state); err != nil {
			return nil, err
		}
		if err := s.replaceConflicts(ctx, tx, userID, state.Version, nil); err != nil {
			return nil, err
		}
		return &storage.PushOutcome{State: state, Changed: true}, nil
	}

	// Diverged base, stale or ahead of the server: a client that does
	// not hold the current version never overwrites silently. Merge
	// instead of rejecting and report what diverged.
	result, err := merge.Merge(merge.Input{
		LocalMod:     in.LastModified,
		RemoteMod:    current.LastModified,
		LocalDevice:  in.DeviceID,
		RemoteDevice: current.LastDeviceID,
		Local:        in.Snapshot,
		Remote:       current.Snapshot,
	}, s.granularity)
	if err != nil {
		return nil, fmt.Errorf("failed to merge push: %w", err)
	}

	state := current
	if result.Changed {
		state = &models.SyncState{
			Version:      current.Version + 1,
			Snapshot:     result.Merged,
			LastModified: laterOf(in.LastModified, current.LastModified),
			LastDeviceID: in.DeviceID,
		}
		if err := s.updateState(ctx, tx, userID, state); err != nil {
			return nil, err
		}
	}

	// The standing conflict set always describes the most recent merged
	// push. A replay that merged to identical content clears it.
	if err := s.replaceConflicts(ctx, tx, userID, state.Version, result.Conflicts); err != nil {
		return nil, err
	}

	return &storage.PushOutcome{
		State:     state,
		Conflicts: result.Conflicts,
		Changed:   result.Changed,
	}, nil
}

// queryer lets state reads run on the pool or inside a transaction.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Storage) queryState(ctx context.Context, q queryer, userID string) (*models.SyncState, error) {
	query := `
		SELECT version, snapshot, last_modified, last_device_id
		FROM sync_states
		WHERE user_id = ?
	`

	state := &models.SyncState{}
	err := q.QueryRowContext(ctx, query, userID).Scan(
		&state.Version,
		&state.Snapshot,
		&state.LastModified,
		&state.LastDeviceID,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	return state, nil
}

func (s *Storage) insertState(ctx context.Context, tx *sql.Tx, userID string, state *models.SyncState) error {
	query := `
		INSERT INTO sync_states (user_id, version, snapshot, last_modified, last_device_id)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		userID,
		state.Version,
		[]byte(state.Snapshot),
		state.LastModified,
		state.LastDeviceID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync state: %w", err)
	}
	return nil
}

func (s *Storage) updateState(ctx context.Context, tx *sql.Tx, userID string, state *models.SyncState) error {
	query := `
		UPDATE sync_states
		SET version = ?, snapshot = ?, last_modified = ?, last_device_id = ?
		WHERE user_id = ?
	`

	_, err := tx.ExecContext(ctx, query,
		state.Version,
		[]byte(state.Snapshot),
		state.LastModified,
		state.LastDeviceID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sync state: %w", err)
	}
	return nil
}

func (s *Storage) replaceConflicts(ctx context.Context, tx *sql.Tx, userID string, version int64, conflicts []models.Conflict) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sync_conflicts WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear conflicts: %w", err)
	}

	query := `
		INSERT INTO sync_conflicts (user_id, version, field, resolution, local_value, remote_value)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, c := range conflicts {
		_, err := tx.ExecContext(ctx, query,
			userID,
			version,
			c.Field,
			string(c.Resolution),
			[]byte(c.LocalValue),
			[]byte(c.RemoteValue),
		)
		if err != nil {
			return fmt.Errorf("failed to insert conflict: %w", err)
		}
	}
	return nil
}

func (s *Storage) queryConflicts(ctx context.Context, userID string) ([]models.Conflict, error) {
	query := `
		SELECT field, resolution, local_value, remote_value
		FROM sync_conflicts
		WHERE user_id = ?
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []models.Conflict
	for rows.Next() {
		var c models.Conflict
		var resolution string
		var local, remote []byte
		if err := rows.Scan(&c.Field, &resolution, &local, &remote); err != nil {
			return nil, fmt.Errorf("failed to scan conflict: %w", err)
		}
		c.Resolution = models.Resolution(resolution)
		c.LocalValue = local
		c.RemoteValue = remote
		conflicts = append(conflicts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conflicts: %w", err)
	}

	return conflicts, nil
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
