package reachability

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/MKhiriev/go-finance-sync/internal/config"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/cenkalti/backoff/v5"
)

const (
	defaultDialTimeout     = 3 * time.Second
	offlineInitialInterval = time.Second
)

type dialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Prober is a [Monitor] that dials the remote API host over TCP. While online
// it probes every interval; while offline it retries with exponential backoff
// capped at the same interval, so a restored link is noticed quickly.
type Prober struct {
	*notifier

	address     string
	interval    time.Duration
	dialTimeout time.Duration
	dial        dialFunc
	logger      *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewProber creates a Prober for cfg.ProbeAddress. It believes offline until
// Start runs the first probe.
func NewProber(cfg config.ClientSync, logger *logger.Logger) *Prober {
	interval := cfg.ProbeInterval
	if interval <= 0 {
		interval = config.DefaultProbeInterval
	}

	dialer := &net.Dialer{}
	return &Prober{
		notifier:    newNotifier(false),
		address:     cfg.ProbeAddress,
		interval:    interval,
		dialTimeout: defaultDialTimeout,
		dial:        dialer.DialContext,
		logger:      logger,
	}
}

// Start runs one probe synchronously so the belief is accurate on return,
// then keeps probing in the background until ctx is cancelled or Stop is
// called.
func (p *Prober) Start(ctx context.Context) error {
	p.Stop()

	p.mu.Lock()
	probeCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	p.probe(probeCtx)

	go func() {
		defer p.wg.Done()
		p.loop(probeCtx)
	}()

	p.logger.Info().
		Str("func", "Prober.Start").
		Str("address", p.address).
		Bool("online", p.Online()).
		Msg("reachability prober started")
	return nil
}

// Stop cancels the probe loop and waits for it to exit. Safe to call when
// not running.
func (p *Prober) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

func (p *Prober) loop(ctx context.Context) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min(offlineInitialInterval, p.interval)
	b.MaxInterval = p.interval

	timer := time.NewTimer(p.nextDelay(b))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			p.probe(ctx)
			timer.Reset(p.nextDelay(b))
		}
	}
}

func (p *Prober) nextDelay(b *backoff.ExponentialBackOff) time.Duration {
	if p.Online() {
		b.Reset()
		return p.interval
	}
	return b.NextBackOff()
}

func (p *Prober) probe(ctx context.Context) {
	dialCtx, cancel := context.WithTimeout(ctx, p.dialTimeout)
	defer cancel()

	conn, err := p.dial(dialCtx, "tcp", p.address)
	if ctx.Err() != nil {
		if conn != nil {
			_ = conn.Close()
		}
		return
	}

	online := err == nil
	if online {
		_ = conn.Close()
	}

	if p.set(online) {
		event := p.logger.Info()
		if !online {
			event = p.logger.Warn().Err(err)
		}
		event.Str("func", "Prober.probe").
			Str("address", p.address).
			Bool("online", online).
			Msg("connectivity changed")
	}
}
