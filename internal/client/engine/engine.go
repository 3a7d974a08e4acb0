// Package engine implements the sync orchestrator: a single event loop
// that flushes the durable change queue, pulls server state, reconciles
// conflicts and exposes a derived status to the UI collaborator.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apiclient "github.com/rtirumala2025/petsync/internal/client/api"
	"github.com/rtirumala2025/petsync/internal/client/storage"
	"github.com/rtirumala2025/petsync/internal/models"
	"github.com/rtirumala2025/petsync/pkg/api"
)

// defaultRetryInterval paces flush retries after a transient server
// error while the connectivity monitor still reports online.
const defaultRetryInterval = 30 * time.Second

// Config wires an Engine to its collaborators.
type Config struct {
	// API is the sync server client.
	API apiclient.SyncAPI

	// Queue is the durable FIFO of pending local changes.
	Queue storage.ChangeQueue

	// Cache persists the last known server-authoritative state.
	Cache storage.StateCache

	// Tokens supplies and refreshes access tokens.
	Tokens TokenSource

	// Resolver folds server-reported conflicts into local state.
	// Defaults to ServerWins.
	Resolver Resolver

	// Monitor reports connectivity; its events drive offline/online
	// transitions.
	Monitor Monitor

	// DeviceID identifies this installation in push requests.
	DeviceID string

	// OnAuthExpired is called when a round-trip still fails auth after
	// one token refresh. The engine suspends network work until the
	// collaborator re-authenticates; nil means log only.
	OnAuthExpired func()

	// RetryInterval overrides defaultRetryInterval. Tests shorten it.
	RetryInterval time.Duration

	Logger *slog.Logger
}

// Monitor is the connectivity surface the engine consumes. Satisfied by
// netmon.Probe and netmon.Manual.
type Monitor interface {
	Online() bool
	Events() <-chan bool
}

// Engine is the sync orchestrator. All network work happens on the
// single goroutine inside Run, so at most one sync round-trip is ever in
// flight. Public methods only mutate the queue and the coalescing wake
// channels, which keeps them safe to call from any goroutine.
type Engine struct {
	cfg Config

	// wake asks the loop to attempt a flush; pulls asks it to re-pull
	// server state. Both have capacity one and coalesce.
	wake  chan struct{}
	pulls chan struct{}

	mu        sync.Mutex
	base      models.EngineStatus
	cloud     *models.SyncState
	conflicts []models.Conflict
	flushing  bool

	// unsaved holds changes the durable queue rejected. They still get
	// flushed, and the loop keeps retrying to persist them on every
	// wake and timer tick until the queue accepts them.
	unsaved []*models.ChangeRecord
}

// New creates a sync engine. Run must be called for it to do anything.
func New(cfg Config) *Engine {
	if cfg.Resolver == nil {
		cfg.Resolver = ServerWins{}
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultRetryInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Engine{
		cfg:   cfg,
		wake:  make(chan struct{}, 1),
		pulls: make(chan struct{}, 1),
		base:  models.StatusRestoring,
	}
}

// Run restores persisted state and processes sync work until ctx is
// canceled.
func (e *Engine) Run(ctx context.Context) {
	e.restore(ctx)

	ticker := time.NewTicker(e.cfg.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.wake:
			e.persistUnsaved(ctx)
			e.flush(ctx)
		case online := <-e.cfg.Monitor.Events():
			if online {
				e.cfg.Logger.Info("connectivity restored, draining queue")
				e.flush(ctx)
			} else {
				e.setBase(models.StatusOffline)
			}
		case <-e.pulls:
			e.pull(ctx)
		case <-ticker.C:
			// Storage retries run even while offline; durability does
			// not depend on connectivity.
			e.persistUnsaved(ctx)
			// Safety net for transient server errors: retry pending
			// work while the monitor still believes we are online.
			if e.cfg.Monitor.Online() && e.pendingCount(ctx) > 0 {
				e.flush(ctx)
			}
		}
	}
}

// EnqueueChange persists a local change and schedules a flush. If the
// durable queue rejects the write the change is kept in memory for this
// session and the storage error is returned so the caller can warn the
// user; the engine still attempts to sync it.
func (e *Engine) EnqueueChange(ctx context.Context, snapshot models.Snapshot, modified time.Time) error {
	record := &models.ChangeRecord{
		ID:           uuid.New().String(),
		Snapshot:     snapshot,
		LastModified: modified,
		EnqueuedAt:   time.Now(),
	}

	err := e.cfg.Queue.Enqueue(ctx, record)
	if err != nil {
		e.cfg.Logger.Error("durable queue rejected change, holding in memory",
			"record_id", record.ID, "error", err)
		e.mu.Lock()
		e.unsaved = append(e.unsaved, record)
		e.mu.Unlock()
	}

	e.signal(e.wake)

	if err != nil {
		return fmt.Errorf("failed to persist change: %w", err)
	}
	return nil
}

// Refresh schedules a pull of the current server state.
func (e *Engine) Refresh() {
	e.signal(e.pulls)
}

// HandleNotification reacts to a realtime change notification by
// scheduling a pull. The realtime bridge already filters self-originated
// notifications while a flush is in flight.
func (e *Engine) HandleNotification(n api.ChangeNotification) {
	e.cfg.Logger.Debug("change notification received",
		"device_id", n.DeviceID, "version", n.Version)
	e.signal(e.pulls)
}

// Status returns the externally visible engine state. Unresolved
// conflicts take precedence over the idle/syncing/offline base so they
// are never silently hidden.
func (e *Engine) Status() models.EngineStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.base == models.StatusRestoring {
		return models.StatusRestoring
	}
	if len(e.conflicts) > 0 {
		return models.StatusConflict
	}
	return e.base
}

// Conflicts returns the unresolved conflicts awaiting acknowledgment.
func (e *Engine) Conflicts() []models.Conflict {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.Conflict, len(e.conflicts))
	copy(out, e.conflicts)
	return out
}

// ClearConflicts acknowledges all surfaced conflicts, returning the
// status to its base state.
func (e *Engine) ClearConflicts() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.conflicts = nil
}

// CloudState returns a copy of the last known server-authoritative
// state, or nil before the first pull or cache restore.
func (e *Engine) CloudState() *models.SyncState {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cloud == nil {
		return nil
	}
	return e.cloud.Clone()
}

// FlushInFlight reports whether a flush is currently running. The
// realtime bridge uses it to drop self-originated notifications.
func (e *Engine) FlushInFlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flushing
}

// restore loads the cached state and queue, attempts an initial pull and
// settles into the first steady-state status.
func (e *Engine) restore(ctx context.Context) {
	if cached, err := e.cfg.Cache.GetState(ctx); err == nil {
		e.mu.Lock()
		e.cloud = cached
		e.mu.Unlock()
	} else if !errors.Is(err, storage.ErrStateNotFound) {
		e.cfg.Logger.Warn("failed to load cached state", "error", err)
	}

	pending := e.pendingCount(ctx)
	e.cfg.Logger.Info("engine restoring", "pending_changes", pending)

	if !e.cfg.Monitor.Online() {
		e.setBase(models.StatusOffline)
		return
	}

	// The initial pull establishes the base version before any queued
	// changes are replayed. Failure degrades to offline; the cached
	// state keeps the client usable.
	if err := e.pullState(ctx); err != nil {
		e.handleSyncError(err, "initial pull")
		return
	}

	e.setBase(models.StatusIdle)
	if pending > 0 {
		e.flush(ctx)
	}
}

// flush drains the pending queue one record at a time, oldest first.
// It stops on the first network or auth failure and leaves the remaining
// records queued.
func (e *Engine) flush(ctx context.Context) {
	if !e.cfg.Monitor.Online() {
		e.setBase(models.StatusOffline)
		return
	}

	e.mu.Lock()
	e.flushing = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.flushing = false
		e.mu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		records := e.pendingRecords(ctx)
		if len(records) == 0 {
			e.setBase(models.StatusIdle)
			return
		}
		e.setBase(models.StatusSyncing)

		record := records[0]
		if err := e.pushRecord(ctx, record); err != nil {
			e.handleSyncError(err, "push")
			return
		}
		e.removeRecord(ctx, record.ID)
	}
}

// pushRecord sends one change on top of the current base version and
// folds the response into local state.
func (e *Engine) pushRecord(ctx context.Context, record *models.ChangeRecord) error {
	e.mu.Lock()
	var baseVersion int64
	if e.cloud != nil {
		baseVersion = e.cloud.Version
	}
	e.mu.Unlock()

	req := api.PushRequest{
		DeviceID:     e.cfg.DeviceID,
		Snapshot:     record.Snapshot,
		LastModified: record.LastModified,
		Version:      baseVersion,
	}

	var envelope *api.SyncEnvelope
	err := e.withAuthRetry(ctx, func(token string) error {
		var callErr error
		envelope, callErr = e.cfg.API.Push(ctx, token, req)
		return callErr
	})
	if err != nil {
		return err
	}

	e.cfg.Logger.Debug("change acknowledged",
		"record_id", record.ID,
		"version", envelope.State.Version,
		"conflicts", len(envelope.Conflicts))

	if len(envelope.Conflicts) == 0 {
		e.adoptState(ctx, stateFromWire(envelope.State), nil)
		return nil
	}

	// The push still succeeded; the server merged and reported what it
	// had to reconcile. The resolver decides what the client keeps.
	resolution := e.cfg.Resolver.Resolve(
		conflictsFromWire(envelope.Conflicts),
		record.Snapshot,
		envelope.State.Snapshot,
	)

	state := stateFromWire(envelope.State)
	state.Snapshot = resolution.Accepted
	e.adoptState(ctx, state, resolution.Unresolved)
	return nil
}

// persistUnsaved retries enqueueing memory-held changes into the
// durable queue. Runs only on the loop goroutine, so it cannot race a
// flush into double-pushing a record.
func (e *Engine) persistUnsaved(ctx context.Context) {
	e.mu.Lock()
	pending := e.unsaved
	e.unsaved = nil
	e.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	var failed []*models.ChangeRecord
	for _, record := range pending {
		if err := e.cfg.Queue.Enqueue(ctx, record); err != nil {
			failed = append(failed, record)
			continue
		}
		e.cfg.Logger.Info("change persisted after earlier storage failure",
			"record_id", record.ID)
	}

	if len(failed) > 0 {
		e.mu.Lock()
		e.unsaved = append(e.unsaved, failed...)
		e.mu.Unlock()
	}
}

// pull fetches current server state outside of a flush, typically in
// response to a realtime notification.
func (e *Engine) pull(ctx context.Context) {
	if err := e.pullState(ctx); err != nil {
		e.handleSyncError(err, "pull")
		return
	}
	if e.pendingCount(ctx) > 0 {
		e.flush(ctx)
	} else {
		e.setBase(models.StatusIdle)
	}
}

// pullState performs one GET round-trip and adopts the result.
func (e *Engine) pullState(ctx context.Context) error {
	var envelope *api.SyncEnvelope
	err := e.withAuthRetry(ctx, func(token string) error {
		var callErr error
		envelope, callErr = e.cfg.API.Pull(ctx, token)
		return callErr
	})
	if err != nil {
		return err
	}

	// Standing conflicts persisted by the server replace the local set;
	// an empty list leaves locally surfaced conflicts alone so they are
	// not cleared without acknowledgment.
	var standing []models.Conflict
	if len(envelope.Conflicts) > 0 {
		standing = conflictsFromWire(envelope.Conflicts)
	}

	e.adoptState(ctx, stateFromWire(envelope.State), standing)
	return nil
}

// withAuthRetry runs one authenticated call, refreshing the token pair
// and retrying exactly once if the server rejects credentials.
func (e *Engine) withAuthRetry(ctx context.Context, call func(token string) error) error {
	token, err := e.cfg.Tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("%w: no access token: %v", apiclient.ErrAuth, err)
	}

	err = call(token)
	if !errors.Is(err, apiclient.ErrAuth) {
		return err
	}

	e.cfg.Logger.Info("access token rejected, refreshing")
	if refreshErr := e.cfg.Tokens.Refresh(ctx); refreshErr != nil {
		return fmt.Errorf("token refresh failed: %w", refreshErr)
	}

	token, err = e.cfg.Tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("%w: no access token after refresh: %v", apiclient.ErrAuth, err)
	}
	return call(token)
}

// handleSyncError maps a failed round-trip onto an engine transition.
func (e *Engine) handleSyncError(err error, op string) {
	switch {
	case errors.Is(err, apiclient.ErrAuth):
		e.cfg.Logger.Error("authentication expired, re-login required",
			"op", op, "error", err)
		e.setBase(models.StatusOffline)
		if e.cfg.OnAuthExpired != nil {
			e.cfg.OnAuthExpired()
		}
	case errors.Is(err, apiclient.ErrNetwork):
		e.cfg.Logger.Info("network unavailable, suspending sync",
			"op", op, "error", err)
		e.setBase(models.StatusOffline)
	default:
		// Server-side failures are treated as transient; the retry
		// ticker re-attempts while connectivity holds.
		e.cfg.Logger.Warn("sync operation failed, will retry",
			"op", op, "error", err)
		e.setBase(models.StatusOffline)
	}
}

// adoptState installs a new authoritative state, persists it and merges
// any unresolved conflicts. A cache write failure is logged but does not
// lose the in-memory state.
func (e *Engine) adoptState(ctx context.Context, state *models.SyncState, unresolved []models.Conflict) {
	e.mu.Lock()
	e.cloud = state
	if unresolved != nil {
		e.conflicts = unresolved
	}
	e.mu.Unlock()

	if err := e.cfg.Cache.SaveState(ctx, state); err != nil {
		e.cfg.Logger.Error("failed to cache server state",
			"version", state.Version, "error", err)
	}
}

// pendingRecords merges the durable queue with in-memory unsaved records,
// ordered oldest first.
func (e *Engine) pendingRecords(ctx context.Context) []*models.ChangeRecord {
	durable, err := e.cfg.Queue.Load(ctx)
	if err != nil {
		e.cfg.Logger.Error("failed to load change queue", "error", err)
		durable = nil
	}

	e.mu.Lock()
	merged := make([]*models.ChangeRecord, 0, len(durable)+len(e.unsaved))
	merged = append(merged, durable...)
	merged = append(merged, e.unsaved...)
	e.mu.Unlock()

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].EnqueuedAt.Before(merged[j].EnqueuedAt)
	})
	return merged
}

func (e *Engine) pendingCount(ctx context.Context) int {
	n, err := e.cfg.Queue.Len(ctx)
	if err != nil {
		e.cfg.Logger.Error("failed to count change queue", "error", err)
		n = 0
	}
	e.mu.Lock()
	n += len(e.unsaved)
	e.mu.Unlock()
	return n
}

// removeRecord drops an acknowledged record from wherever it lives.
func (e *Engine) removeRecord(ctx context.Context, id string) {
	e.mu.Lock()
	for i, r := range e.unsaved {
		if r.ID == id {
			e.unsaved = append(e.unsaved[:i], e.unsaved[i+1:]...)
			e.mu.Unlock()
			return
		}
	}
	e.mu.Unlock()

	if err := e.cfg.Queue.Remove(ctx, id); err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		e.cfg.Logger.Error("failed to remove acknowledged record",
			"record_id", id, "error", err)
	}
}

func (e *Engine) setBase(s models.EngineStatus) {
	e.mu.Lock()
	e.base = s
	e.mu.Unlock()
}

// signal performs a non-blocking send on a capacity-one channel; an
// already pending signal covers this one.
func (e *Engine) signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// stateFromWire converts the wire representation of server state.
func stateFromWire(s api.SyncState) *models.SyncState {
	snapshot := make(models.Snapshot, len(s.Snapshot))
	copy(snapshot, s.Snapshot)

	return &models.SyncState{
		Snapshot:     snapshot,
		Version:      s.Version,
		LastModified: s.LastModified,
		LastDeviceID: s.LastDeviceID,
	}
}

// conflictsFromWire converts server-reported conflicts.
func conflictsFromWire(in []api.Conflict) []models.Conflict {
	out := make([]models.Conflict, 0, len(in))
	for _, c := range in {
		out = append(out, models.Conflict{
			Field:       c.Field,
			Resolution:  models.Resolution(c.Resolution),
			LocalValue:  c.LocalValue,
			RemoteValue: c.RemoteValue,
		})
	}
	return out
}
