package cli

import (
	"context"
	"sync"
	"time"

	"github.com/rtirumala2025/petsync/internal/client/netmon"
	"github.com/rtirumala2025/petsync/internal/client/realtime"
	"github.com/rtirumala2025/petsync/internal/models"
)

// probeInterval paces the connectivity probe in watch mode.
const probeInterval = 15 * time.Second

func (c *Cli) runWatch(ctx context.Context) error {
	c.io.Println("=== Watch ===")
	c.io.Println("Continuous sync running. Press Ctrl+C to stop.")
	c.io.Println()

	monitor := netmon.NewProbe(c.apiClient.Ping, probeInterval, c.logger)
	eng, err := c.newEngine(ctx, monitor, func() {
		c.io.Println("Session expired. Run 'petsync login' to resume syncing.")
	})
	if err != nil {
		return err
	}

	auth, err := c.authService.CurrentSession(ctx)
	if err != nil {
		return err
	}
	deviceID, err := c.store.Devices(auth.UserID).GetOrCreate(ctx)
	if err != nil {
		return err
	}

	bridge := realtime.New(realtime.Config{
		URL:           wsURL(c.serverURL),
		DeviceID:      deviceID,
		Token:         c.session.AccessToken,
		Notify:        eng.HandleNotification,
		FlushInFlight: eng.FlushInFlight,
		Logger:        c.logger,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		monitor.Run(runCtx)
	}()
	go func() {
		defer wg.Done()
		bridge.Run(runCtx)
	}()
	go func() {
		defer wg.Done()
		eng.Run(runCtx)
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	last := models.EngineStatus(-1)
	for {
		select {
		case <-ctx.Done():
			cancel()
			wg.Wait()
			c.io.Println()
			c.io.Println("Watch stopped.")
			return nil

		case <-ticker.C:
			status := eng.Status()
			if status == last {
				continue
			}
			last = status

			if status == models.StatusConflict {
				c.printConflicts(eng.Conflicts())
				eng.ClearConflicts()
				continue
			}
			c.io.Printf("Status: %s\n", status)
		}
	}
}
