package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rtirumala2025/petsync/internal/client/storage"
	"github.com/rtirumala2025/petsync/internal/models"
)

func (c *Cli) runSet(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: petsync set <field> <value>")
	}
	field, rawValue := args[0], args[1]

	auth, err := c.authService.CurrentSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return fmt.Errorf("not authenticated, run 'petsync login' first")
		}
		return fmt.Errorf("failed to read session: %w", err)
	}

	// Values are JSON when they parse as JSON, plain strings otherwise,
	// so `set coins 25` and `set name Biscuit` both do the obvious thing.
	value := json.RawMessage(rawValue)
	if !json.Valid(value) {
		quoted, marshalErr := json.Marshal(rawValue)
		if marshalErr != nil {
			return fmt.Errorf("invalid value: %w", marshalErr)
		}
		value = quoted
	}

	queue := c.store.Queue(auth.UserID)

	snapshot, err := c.baseSnapshot(ctx, auth.UserID)
	if err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(snapshot, &fields); err != nil {
		return fmt.Errorf("failed to decode pet state: %w", err)
	}
	fields[field] = value

	updated, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode pet state: %w", err)
	}

	now := time.Now()
	record := &models.ChangeRecord{
		ID:           uuid.New().String(),
		Snapshot:     updated,
		LastModified: now,
		EnqueuedAt:   now,
	}
	if err := queue.Enqueue(ctx, record); err != nil {
		return fmt.Errorf("failed to queue change: %w", err)
	}

	c.io.Printf("Set %s = %s\n", field, string(value))
	c.io.Println("Change queued. Run 'petsync sync' to push it to the server.")

	return nil
}

// baseSnapshot returns the snapshot a new change builds on: the newest
// queued change if one is pending, otherwise the cached server state,
// otherwise an empty pet.
func (c *Cli) baseSnapshot(ctx context.Context, userID string) (models.Snapshot, error) {
	records, err := c.store.Queue(userID).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load change queue: %w", err)
	}
	if len(records) > 0 {
		return records[len(records)-1].Snapshot, nil
	}

	state, err := c.store.StateCache(userID).GetState(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrStateNotFound) {
			return models.Snapshot(`{}`), nil
		}
		return nil, fmt.Errorf("failed to read cached state: %w", err)
	}
	return state.Snapshot, nil
}
