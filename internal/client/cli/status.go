package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rtirumala2025/petsync/internal/client/storage"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()

	auth, err := c.authService.CurrentSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			c.io.Println("Status: Not authenticated")
			c.io.Println()
			c.io.Println("Run 'petsync login' to authenticate.")
			return nil
		}
		return fmt.Errorf("failed to read session: %w", err)
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Username: %s\n", auth.Username)
	c.io.Printf("Token expires: %s\n", auth.ExpiresAt.Format(time.RFC3339))

	remaining := time.Until(auth.ExpiresAt)
	if remaining > 0 {
		c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))
	} else {
		c.io.Println("Token has expired; it will be refreshed on the next sync.")
	}

	if state, err := c.store.StateCache(auth.UserID).GetState(ctx); err == nil {
		c.io.Println()
		c.io.Printf("Last known server version: %d\n", state.Version)
		c.io.Printf("Last modified: %s\n", state.LastModified.Format(time.RFC3339))
	} else if !errors.Is(err, storage.ErrStateNotFound) {
		return fmt.Errorf("failed to read cached state: %w", err)
	}

	pending, err := c.store.Queue(auth.UserID).Len(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending changes: %w", err)
	}

	c.io.Println()
	if pending > 0 {
		c.io.Printf("Pending sync: %d change(s) waiting\n", pending)
		c.io.Println("Run 'petsync sync' to synchronize with server.")
	} else {
		c.io.Println("All changes synchronized with server")
	}

	return nil
}
