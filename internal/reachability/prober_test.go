package reachability

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-finance-sync/internal/config"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProber(interval time.Duration, up *atomic.Bool) *Prober {
	p := NewProber(config.ClientSync{ProbeAddress: "api.test:443", ProbeInterval: interval}, logger.Nop())
	p.dial = func(ctx context.Context, network, address string) (net.Conn, error) {
		if up.Load() {
			client, server := net.Pipe()
			_ = server.Close()
			return client, nil
		}
		return nil, &net.OpError{Op: "dial", Net: network, Err: assert.AnError}
	}
	return p
}

func TestProber_StartProbesSynchronously(t *testing.T) {
	var up atomic.Bool
	up.Store(true)

	p := newTestProber(time.Hour, &up)
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	assert.True(t, p.Online())
}

func TestProber_DetectsTransitions(t *testing.T) {
	var up atomic.Bool
	up.Store(true)

	p := newTestProber(10*time.Millisecond, &up)
	rec := &transitions{}
	p.Subscribe(rec.record)

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	up.Store(false)
	assert.Eventually(t, func() bool { return !p.Online() }, time.Second, 5*time.Millisecond)

	up.Store(true)
	assert.Eventually(t, p.Online, time.Second, 5*time.Millisecond)

	assert.Equal(t, []bool{true, false, true}, rec.get())
}

func TestProber_RealListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	p := NewProber(config.ClientSync{ProbeAddress: ln.Addr().String(), ProbeInterval: 10 * time.Millisecond}, logger.Nop())
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()
	assert.True(t, p.Online())

	require.NoError(t, ln.Close())
	assert.Eventually(t, func() bool { return !p.Online() }, 2*time.Second, 5*time.Millisecond)
}

func TestProber_StopIsIdempotent(t *testing.T) {
	var up atomic.Bool
	p := newTestProber(10*time.Millisecond, &up)

	p.Stop()
	require.NoError(t, p.Start(context.Background()))
	p.Stop()
	p.Stop()

	assert.False(t, p.Online())
}

func TestProber_StopsOnContextCancel(t *testing.T) {
	var up atomic.Bool
	var dials atomic.Int32
	p := newTestProber(5*time.Millisecond, &up)
	inner := p.dial
	p.dial = func(ctx context.Context, network, address string) (net.Conn, error) {
		dials.Add(1)
		return inner(ctx, network, address)
	}

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Start(ctx))
	cancel()
	p.Stop()

	n := dials.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, dials.Load())
}
