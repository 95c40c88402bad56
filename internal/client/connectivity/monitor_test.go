package connectivity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeProbe struct {
	mu  sync.Mutex
	err error
}

func (p *fakeProbe) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *fakeProbe) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func TestSimulateOfflineOverridesProbe(t *testing.T) {
	m := NewMonitor(nil)

	m.SetOnline(true)
	require.True(t, m.EffectiveOnline())

	m.SetSimulateOffline(true)
	require.True(t, m.Online())
	require.False(t, m.EffectiveOnline())

	// A successful probe while the override is set must not flip the
	// effective state.
	m.SetOnline(true)
	require.False(t, m.EffectiveOnline())

	m.SetSimulateOffline(false)
	require.True(t, m.EffectiveOnline())
}

func TestOnChangeFiresOnEffectiveFlips(t *testing.T) {
	m := NewMonitor(nil)

	var flips []bool
	m.OnChange(func(online bool) { flips = append(flips, online) })

	m.SetOnline(true)
	m.SetOnline(true) // no-op, already online
	m.SetSimulateOffline(true)
	m.SetOnline(false) // effective state already offline
	m.SetOnline(true)
	m.SetSimulateOffline(false)

	require.Equal(t, []bool{true, false, true}, flips)
}

func TestWatchTracksProbe(t *testing.T) {
	probe := &fakeProbe{}
	m := NewMonitor(probe)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Watch(ctx, 10*time.Millisecond)
	}()

	require.Eventually(t, m.EffectiveOnline, time.Second, 5*time.Millisecond)

	probe.setErr(errors.New("connection refused"))
	require.Eventually(t, func() bool { return !m.EffectiveOnline() }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
