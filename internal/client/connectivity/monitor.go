// Package connectivity tracks whether the device can reach the server and
// lets field staff force offline behaviour for testing capture flows.
package connectivity

import (
	"context"
	"sync"
	"time"
)

// Probe checks server reachability. A nil error means online.
type Probe interface {
	Ping(ctx context.Context) error
}

// Monitor holds the observed link state and the manual offline override.
// The override always wins: while it is set the device behaves as offline
// even when probes succeed.
type Monitor struct {
	mu              sync.RWMutex
	online          bool
	simulateOffline bool

	probe    Probe
	onChange func(online bool)
}

func NewMonitor(probe Probe) *Monitor {
	return &Monitor{probe: probe}
}

// OnChange registers a callback invoked whenever the effective state flips.
func (m *Monitor) OnChange(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	was := m.effectiveLocked()
	m.online = online
	now := m.effectiveLocked()
	fn := m.onChange
	m.mu.Unlock()

	if was != now && fn != nil {
		fn(now)
	}
}

func (m *Monitor) SetSimulateOffline(simulate bool) {
	m.mu.Lock()
	was := m.effectiveLocked()
	m.simulateOffline = simulate
	now := m.effectiveLocked()
	fn := m.onChange
	m.mu.Unlock()

	if was != now && fn != nil {
		fn(now)
	}
}

func (m *Monitor) SimulateOffline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.simulateOffline
}

func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// EffectiveOnline reports whether network actions may be attempted.
func (m *Monitor) EffectiveOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.effectiveLocked()
}

func (m *Monitor) effectiveLocked() bool {
	return m.online && !m.simulateOffline
}

// Watch probes the server on the given interval until ctx is cancelled.
func (m *Monitor) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.probeOnce(ctx)

	for {
		select {
		case <-ticker.C:
			m.probeOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) probeOnce(ctx context.Context) {
	if m.probe == nil {
		return
	}
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := m.probe.Ping(probeCtx)
	cancel()
	m.SetOnline(err == nil)
}
