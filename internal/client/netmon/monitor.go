// Package netmon tracks server reachability and exposes online/offline
// transitions as events the sync engine reacts to.
package netmon

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Monitor exposes current connectivity plus a subscription for
// transitions. Implementations must guarantee that an offline-to-online
// transition is eventually delivered at least once, even if intermediate
// blips were missed, so a flush is always attempted after reconnecting.
type Monitor interface {
	// Online returns the current connectivity state.
	Online() bool

	// Events delivers connectivity transitions; true means online.
	// The channel coalesces: only the latest state is retained for a
	// slow consumer.
	Events() <-chan bool
}

// offlineThreshold is the number of consecutive failed probes before the
// monitor declares offline. A single lost probe does not flap the engine.
const offlineThreshold = 2

// Probe is a Monitor that periodically pings the server health endpoint.
type Probe struct {
	ping     func(ctx context.Context) error
	logger   *slog.Logger
	events   chan bool
	interval time.Duration

	mu       sync.Mutex
	online   bool
	failures int
}

var _ Monitor = (*Probe)(nil)

// NewProbe creates a probe-based monitor. ping is typically the API
// client's Ping method. The monitor starts optimistic (online) and the
// first probe corrects it.
func NewProbe(ping func(ctx context.Context) error, interval time.Duration, logger *slog.Logger) *Probe {
	return &Probe{
		ping:     ping,
		interval: interval,
		logger:   logger,
		events:   make(chan bool, 1),
		online:   true,
	}
}

// Online returns the current connectivity state.
func (p *Probe) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

// Events delivers connectivity transitions.
func (p *Probe) Events() <-chan bool {
	return p.events
}

// Run probes until ctx is canceled. It probes once immediately so the
// engine does not wait a full interval for the initial verdict.
func (p *Probe) Run(ctx context.Context) {
	p.probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

func (p *Probe) probe(ctx context.Context) {
	err := p.ping(ctx)

	p.mu.Lock()
	wasOnline := p.online
	if err != nil {
		p.failures++
		if p.failures >= offlineThreshold {
			p.online = false
		}
	} else {
		p.failures = 0
		p.online = true
	}
	nowOnline := p.online
	p.mu.Unlock()

	if nowOnline != wasOnline {
		p.logger.Info("connectivity changed", "online", nowOnline)
		p.publish(nowOnline)
	}
}

// publish coalesces into the single-slot event channel: a stale value is
// replaced so the latest state always gets through.
func (p *Probe) publish(online bool) {
	for {
		select {
		case p.events <- online:
			return
		default:
			select {
			case <-p.events:
			default:
			}
		}
	}
}

// Manual is a Monitor driven by explicit Set calls. Used by tests and by
// callers that learn connectivity from elsewhere.
type Manual struct {
	events chan bool

	mu     sync.Mutex
	online bool
}

var _ Monitor = (*Manual)(nil)

// NewManual creates a manually driven monitor with the given initial state.
func NewManual(online bool) *Manual {
	return &Manual{
		events: make(chan bool, 1),
		online: online,
	}
}

// Online returns the current connectivity state.
func (m *Manual) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Events delivers connectivity transitions.
func (m *Manual) Events() <-chan bool {
	return m.events
}

// Set updates connectivity and publishes the transition if it changed.
func (m *Manual) Set(online bool) {
	m.mu.Lock()
	changed := m.online != online
	m.online = online
	m.mu.Unlock()

	if !changed {
		return
	}
	for {
		select {
		case m.events <- online:
			return
		default:
			select {
			case <-m.events:
			default:
			}
		}
	}
}
