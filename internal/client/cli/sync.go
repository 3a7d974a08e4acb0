package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rtirumala2025/petsync/internal/client/engine"
	"github.com/rtirumala2025/petsync/internal/client/netmon"
	"github.com/rtirumala2025/petsync/internal/client/storage"
	"github.com/rtirumala2025/petsync/internal/models"
)

// syncWait bounds a one-shot sync run.
const syncWait = 2 * time.Minute

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()

	auth, err := c.authService.CurrentSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return fmt.Errorf("not authenticated, run 'petsync login' first")
		}
		return fmt.Errorf("failed to read session: %w", err)
	}
	queue := c.store.Queue(auth.UserID)

	eng, err := c.newEngine(ctx, netmon.NewManual(true), nil)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		eng.Run(runCtx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.Now().Add(syncWait)
	for {
		switch eng.Status() {
		case models.StatusIdle:
			// Idle is only final once the durable queue is drained; the
			// engine passes through idle briefly between restore and the
			// first flush.
			pending, lenErr := queue.Len(ctx)
			if lenErr != nil {
				return fmt.Errorf("failed to count pending changes: %w", lenErr)
			}
			if pending > 0 {
				break
			}

			c.io.Println("Synchronization complete.")
			if state := eng.CloudState(); state != nil {
				c.io.Printf("Server version: %d\n", state.Version)
			}
			return nil

		case models.StatusConflict:
			c.printConflicts(eng.Conflicts())
			eng.ClearConflicts()
			c.io.Println()
			c.io.Println("Synchronization complete.")
			return nil

		case models.StatusOffline:
			return fmt.Errorf("server unreachable or session expired, changes remain queued")
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("synchronization timed out")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// newEngine assembles a sync engine for the logged-in user.
func (c *Cli) newEngine(ctx context.Context, monitor engine.Monitor, onAuthExpired func()) (*engine.Engine, error) {
	auth, err := c.authService.CurrentSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, fmt.Errorf("not authenticated, run 'petsync login' first")
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	deviceID, err := c.store.Devices(auth.UserID).GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device id: %w", err)
	}

	return engine.New(engine.Config{
		API:           c.apiClient,
		Queue:         c.store.Queue(auth.UserID),
		Cache:         c.store.StateCache(auth.UserID),
		Tokens:        c.session,
		Monitor:       monitor,
		DeviceID:      deviceID,
		OnAuthExpired: onAuthExpired,
		Logger:        c.logger,
	}), nil
}

func (c *Cli) printConflicts(conflicts []models.Conflict) {
	c.io.Printf("Resolved %d conflict(s) while merging:\n", len(conflicts))
	for _, conflict := range conflicts {
		c.io.Printf("  %s: kept %s (%s), discarded %s\n",
			conflict.Field,
			string(conflict.RemoteValue),
			conflict.Resolution,
			string(conflict.LocalValue))
	}
}
