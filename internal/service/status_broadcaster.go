package service

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/metrics"
	"github.com/MKhiriev/go-finance-sync/internal/reachability"
	"github.com/MKhiriev/go-finance-sync/internal/store"
	"github.com/MKhiriev/go-finance-sync/models"
)

// statusBroadcaster keeps no operation data. Every snapshot is assembled from
// the queue counts, the reachability belief and the engine flags.
type statusBroadcaster struct {
	queue   store.QueueRepository
	monitor reachability.Monitor
	flags   func() EngineFlags
	metrics *metrics.Metrics
	logger  *logger.Logger

	mu     sync.Mutex
	subs   map[uint64]func(models.SyncState)
	nextID uint64

	// last counts that were read successfully
	pending int
	failed  int

	// serializes snapshot assembly and delivery
	emitMu sync.Mutex
}

// NewStatusBroadcaster creates a broadcaster. flags may be nil when no engine
// is attached.
func NewStatusBroadcaster(
	queue store.QueueRepository,
	monitor reachability.Monitor,
	flags func() EngineFlags,
	m *metrics.Metrics,
	logger *logger.Logger,
) StatusBroadcaster {
	return newStatusBroadcaster(queue, monitor, flags, m, logger)
}

func newStatusBroadcaster(
	queue store.QueueRepository,
	monitor reachability.Monitor,
	flags func() EngineFlags,
	m *metrics.Metrics,
	logger *logger.Logger,
) *statusBroadcaster {
	if flags == nil {
		flags = func() EngineFlags { return EngineFlags{} }
	}
	return &statusBroadcaster{
		queue:   queue,
		monitor: monitor,
		flags:   flags,
		metrics: m,
		logger:  logger,
		subs:    make(map[uint64]func(models.SyncState)),
	}
}

// Subscribe registers fn and hands it the current snapshot before returning.
func (b *statusBroadcaster) Subscribe(fn func(models.SyncState)) func() {
	b.emitMu.Lock()
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	fn(b.snapshot(b.logger.WithContext(context.Background())))
	b.emitMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish pushes a fresh snapshot to every current subscriber.
func (b *statusBroadcaster) Publish(ctx context.Context) {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()

	state := b.snapshot(ctx)

	b.mu.Lock()
	subs := make([]func(models.SyncState), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

func (b *statusBroadcaster) Snapshot(ctx context.Context) models.SyncState {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()
	return b.snapshot(ctx)
}

// snapshot must be called with emitMu held.
func (b *statusBroadcaster) snapshot(ctx context.Context) models.SyncState {
	log := logger.FromContext(ctx)

	if n, err := b.queue.Count(ctx, models.StatusPending); err != nil {
		log.Err(err).Str("func", "statusBroadcaster.snapshot").Msg("failed to count pending operations, reusing last value")
	} else {
		b.pending = n
	}
	if n, err := b.queue.Count(ctx, models.StatusFailed); err != nil {
		log.Err(err).Str("func", "statusBroadcaster.snapshot").Msg("failed to count failed operations, reusing last value")
	} else {
		b.failed = n
	}
	b.metrics.QueueDepth(b.pending, b.failed)

	flags := b.flags()
	online := b.monitor.Online()

	status := models.StatusOnline
	switch {
	case !online:
		status = models.StatusOffline
	case flags.IsSyncing:
		status = models.StatusSyncing
	}

	return models.SyncState{
		Status:       status,
		PendingCount: b.pending,
		FailedCount:  b.failed,
		LastSyncTime: flags.LastSyncTime,
		IsSyncing:    flags.IsSyncing,
		AuthRequired: flags.AuthRequired,
	}
}
