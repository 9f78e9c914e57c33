// Package connectivity tracks whether the server is reachable and tells
// subscribers when that changes.
package connectivity

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/habitkeeper/internal/logging"
)

// Prober checks reachability; a nil error means online.
type Prober interface {
	Ping(ctx context.Context) error
}

// Listener receives the new state after a transition.
type Listener func(online bool)

type subscription struct {
	id int
	fn Listener
}

type Monitor struct {
	prober       Prober
	probeTimeout time.Duration
	logger       logging.Logger

	mu        sync.Mutex
	online    bool
	nextID    int
	listeners []subscription
}

func NewMonitor(prober Prober, probeTimeout time.Duration, logger logging.Logger) *Monitor {
	return &Monitor{prober: prober, probeTimeout: probeTimeout, logger: logger}
}

func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers fn and returns a function that removes it.
func (m *Monitor) Subscribe(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, subscription{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.listeners = slices.DeleteFunc(m.listeners, func(s subscription) bool { return s.id == id })
	}
}

// Set records the state. Listeners run only on a real transition, in the
// caller's goroutine and outside the lock.
func (m *Monitor) Set(ctx context.Context, online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := slices.Clone(m.listeners)
	m.mu.Unlock()

	if online {
		m.logger.Info(ctx, "switched to online mode")
	} else {
		m.logger.Info(ctx, "switched to offline mode")
	}

	for _, s := range listeners {
		s.fn(online)
	}
}

// Probe pings the server once and feeds the outcome to Set.
func (m *Monitor) Probe(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	err := m.prober.Ping(pctx)
	cancel()

	if err != nil {
		m.logger.Debug(ctx, "probe failed", "error", err)
	}
	m.Set(ctx, err == nil)
	return err == nil
}

// Watch probes immediately and then on every tick until ctx is done.
func (m *Monitor) Watch(ctx context.Context, interval time.Duration) {
	m.Probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}
