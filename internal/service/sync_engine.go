// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-finance-sync/internal/adapter"
	"github.com/MKhiriev/go-finance-sync/internal/config"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/metrics"
	"github.com/MKhiriev/go-finance-sync/internal/reachability"
	"github.com/MKhiriev/go-finance-sync/internal/store"
	"github.com/MKhiriev/go-finance-sync/internal/utils"
	"github.com/MKhiriev/go-finance-sync/internal/validators"
	"github.com/MKhiriev/go-finance-sync/models"
	"github.com/rs/zerolog"
)

type syncEngine struct {
	queue     store.QueueRepository
	gateway   adapter.Gateway
	monitor   reachability.Monitor
	status    *statusBroadcaster
	validator validators.Validator
	metrics   *metrics.Metrics
	logger    *logger.Logger

	graceDelay time.Duration
	maxRetries int
	now        func() time.Time

	// check-and-set guard: at most one pass at a time
	draining atomic.Bool

	flagsMu      sync.Mutex
	lastSyncTime *time.Time
	authRequired bool

	// stopped is set by Stop; no grace timers are armed after it
	timersMu sync.Mutex
	timers   map[string]*time.Timer
	stopped  bool

	// runCtx is non-nil between Start and Stop; background drains are
	// tracked by wg and only spawned while it is set
	lifecycleMu sync.Mutex
	runCtx      context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

// NewSyncEngine creates an idle engine. Call Start to hook it to the monitor.
func NewSyncEngine(
	queue store.QueueRepository,
	gateway adapter.Gateway,
	monitor reachability.Monitor,
	cfg config.ClientSync,
	m *metrics.Metrics,
	logger *logger.Logger,
) SyncEngine {
	return newSyncEngine(queue, gateway, monitor, cfg, m, logger)
}

func newSyncEngine(
	queue store.QueueRepository,
	gateway adapter.Gateway,
	monitor reachability.Monitor,
	cfg config.ClientSync,
	m *metrics.Metrics,
	logger *logger.Logger,
) *syncEngine {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = models.DefaultMaxRetries
	}
	graceDelay := cfg.GraceDelay
	if graceDelay < 0 {
		graceDelay = 0
	}

	e := &syncEngine{
		queue:      queue,
		gateway:    gateway,
		monitor:    monitor,
		validator:  validators.NewOperationValidator(),
		metrics:    m,
		logger:     logger,
		graceDelay: graceDelay,
		maxRetries: maxRetries,
		now:        time.Now,
		timers:     make(map[string]*time.Timer),
	}
	e.status = newStatusBroadcaster(queue, monitor, e.flags, m, logger)

	return e
}

// ── lifecycle ────────────────────────────────────────────────────────────────

func (e *syncEngine) Start(ctx context.Context) error {
	e.lifecycleMu.Lock()
	if e.runCtx != nil {
		e.lifecycleMu.Unlock()
		return nil
	}

	runCtx, cancel := context.WithCancel(e.logger.WithContext(ctx))
	if _, err := e.purgeSynced(runCtx); err != nil {
		cancel()
		e.lifecycleMu.Unlock()
		return err
	}

	e.runCtx = runCtx
	e.cancel = cancel

	e.timersMu.Lock()
	e.stopped = false
	e.timersMu.Unlock()
	e.unsubscribe = e.monitor.Subscribe(e.onReachabilityChange)
	e.lifecycleMu.Unlock()

	online := e.monitor.Online()
	e.metrics.Online(online)
	e.status.Publish(runCtx)

	e.logger.Info().
		Bool("online", online).
		Dur("grace_delay", e.graceDelay).
		Int("max_retries", e.maxRetries).
		Msg("sync engine started")

	if online {
		e.trigger("startup")
	}
	return nil
}

func (e *syncEngine) Stop() {
	e.lifecycleMu.Lock()
	cancel, unsubscribe := e.cancel, e.unsubscribe
	e.runCtx, e.cancel, e.unsubscribe = nil, nil, nil
	e.lifecycleMu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	e.wg.Wait()

	e.timersMu.Lock()
	e.stopped = true
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
	e.timersMu.Unlock()

	e.logger.Info().Msg("sync engine stopped")
}

func (e *syncEngine) onReachabilityChange(online bool) {
	e.metrics.Online(online)

	e.lifecycleMu.Lock()
	ctx := e.runCtx
	e.lifecycleMu.Unlock()
	if ctx == nil {
		return
	}

	e.status.Publish(ctx)
	if online {
		e.trigger("went online")
	}
}

// trigger starts a drain in the background. Nothing happens when the engine
// is not running.
func (e *syncEngine) trigger(reason string) {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()

	ctx := e.runCtx
	if ctx == nil || ctx.Err() != nil {
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		log := logger.FromContext(ctx)
		log.Debug().Str("reason", reason).Msg("drain triggered")

		res, err := e.Drain(ctx)
		if err != nil {
			log.Err(err).Str("func", "syncEngine.trigger").Str("reason", reason).Msg("background drain failed")
			return
		}
		if !res.Skipped {
			log.Debug().
				Int("synced", res.Synced).
				Int("retried", res.Retried).
				Int("exhausted", res.Exhausted).
				Msg("background drain finished")
		}
	}()
}

// ── drain ────────────────────────────────────────────────────────────────────

// ForceSyncNow runs a pass on behalf of a UI. The caller going away does not
// cut the pass short.
func (e *syncEngine) ForceSyncNow(ctx context.Context) (models.DrainResult, error) {
	e.logger.Info().Msg("manual sync requested")
	return e.Drain(context.WithoutCancel(ctx))
}

func (e *syncEngine) Drain(ctx context.Context) (models.DrainResult, error) {
	ctx = e.withLogger(ctx)

	if !e.monitor.Online() {
		e.metrics.Drain(metrics.DrainSkipped)
		return models.DrainResult{Skipped: true}, nil
	}
	if !e.draining.CompareAndSwap(false, true) {
		e.metrics.Drain(metrics.DrainSkipped)
		return models.DrainResult{Skipped: true}, nil
	}

	e.status.Publish(ctx)
	result, err := e.drain(ctx)
	e.draining.Store(false)
	e.status.Publish(ctx)

	return result, err
}

// drain is one pass. The caller holds the draining flag.
func (e *syncEngine) drain(ctx context.Context) (models.DrainResult, error) {
	log := logger.FromContext(ctx)

	var result models.DrainResult

	ops, err := e.queue.GetPending(ctx)
	if err != nil {
		e.metrics.Drain(metrics.DrainPersistenceFailed)
		return result, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	for _, op := range ops {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		if err := e.replay(ctx, op, &result); err != nil {
			switch {
			case errors.Is(err, ErrAuthentication):
				e.metrics.Drain(metrics.DrainAuthAborted)
				log.Warn().
					Str("operation_id", op.ID).
					Int("synced", result.Synced).
					Msg("drain aborted: authentication required")
			case errors.Is(err, ErrPersistenceFailure):
				e.metrics.Drain(metrics.DrainPersistenceFailed)
			}
			return result, err
		}
	}

	e.setLastSyncTime(e.now())
	e.metrics.Drain(metrics.DrainCompleted)

	if _, err := e.purgeSynced(ctx); err != nil {
		log.Err(err).Str("func", "syncEngine.drain").Msg("failed to purge synced operations")
	}

	log.Info().
		Int("synced", result.Synced).
		Int("retried", result.Retried).
		Int("exhausted", result.Exhausted).
		Msg("drain pass completed")

	return result, nil
}

// replay sends one operation and records the outcome. A returned error ends
// the pass.
func (e *syncEngine) replay(ctx context.Context, op models.QueuedOperation, result *models.DrainResult) error {
	log := logger.FromContext(ctx).With().
		Str("operation_id", op.ID).
		Str("method", string(op.Method)).
		Str("endpoint", op.Endpoint).
		Logger()

	pending, ok := op.State.(models.Pending)
	if !ok {
		// GetPending only yields PENDING rows
		return nil
	}

	_, sendErr := e.gateway.Send(ctx, op.Method, op.Endpoint, op.Payload)
	if sendErr == nil {
		// the server has the write; record it even if ctx is already done
		err := e.queue.Update(context.WithoutCancel(ctx), op.ID, pending.MarkSynced(e.now()))
		if ok, err := e.tolerateGone(err); !ok {
			return err
		}

		result.Synced++
		e.metrics.Replay(metrics.ReplaySynced)
		e.clearAuthRequired()
		e.scheduleDeletion(op.ID)
		log.Debug().Msg("operation synced")
		return nil
	}

	// cancelled by the caller: not the operation's fault
	if ctx.Err() != nil {
		return ctx.Err()
	}

	next := pending.RecordFailure(sendErr.Error(), op.MaxRetries)
	if ok, err := e.tolerateGone(e.queue.Update(ctx, op.ID, next)); !ok {
		return err
	}

	_, exhausted := next.(models.Failed)
	if exhausted {
		result.Exhausted++
	} else {
		result.Retried++
	}

	if errors.Is(sendErr, adapter.ErrUnauthorized) {
		e.metrics.Replay(metrics.ReplayAuthFailed)
		e.setAuthRequired()
		return fmt.Errorf("%w: %w", ErrAuthentication, sendErr)
	}

	if exhausted {
		e.metrics.Replay(metrics.ReplayExhausted)
		log.Warn().
			Err(fmt.Errorf("%w: %w", ErrExhausted, sendErr)).
			Int("retry_count", next.Retries()).
			Msg("operation failed permanently")
		return nil
	}

	e.metrics.Replay(metrics.ReplayRetried)
	log.Debug().
		Err(fmt.Errorf("%w: %w", ErrTransient, sendErr)).
		Int("retry_count", next.Retries()).
		Msg("operation will be retried")
	return nil
}

// tolerateGone treats a record that vanished or left PENDING during the pass
// as a no-op. ok is false when err must end the pass.
func (e *syncEngine) tolerateGone(err error) (ok bool, _ error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrOperationNotFound), errors.Is(err, store.ErrStateTransition):
		return true, nil
	}
	return false, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
}

// ── grace deletion ───────────────────────────────────────────────────────────

func (e *syncEngine) scheduleDeletion(id string) {
	e.timersMu.Lock()
	defer e.timersMu.Unlock()

	if e.stopped {
		return
	}
	if old, ok := e.timers[id]; ok {
		old.Stop()
	}

	e.timers[id] = time.AfterFunc(e.graceDelay, func() {
		e.timersMu.Lock()
		delete(e.timers, id)
		e.timersMu.Unlock()

		ctx := e.logger.WithContext(context.Background())
		if err := e.queue.Delete(ctx, id); err != nil {
			e.logger.Err(err).
				Str("func", "syncEngine.scheduleDeletion").
				Str("operation_id", id).
				Msg("failed to delete synced operation, it will be purged later")
		}
	})
}

func (e *syncEngine) cancelDeletion(id string) {
	e.timersMu.Lock()
	defer e.timersMu.Unlock()

	if t, ok := e.timers[id]; ok {
		t.Stop()
		delete(e.timers, id)
	}
}

func (e *syncEngine) purgeSynced(ctx context.Context) (int64, error) {
	n, err := e.queue.PurgeSynced(ctx, e.now().Add(-e.graceDelay))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	if n > 0 {
		logger.FromContext(ctx).Debug().Int64("purged", n).Msg("purged synced operations")
	}
	return n, nil
}

// ── enqueue & manual controls ────────────────────────────────────────────────

func (e *syncEngine) QueueOperation(
	ctx context.Context,
	endpoint string,
	method models.Method,
	payload json.RawMessage,
	maxRetries int,
) (string, error) {
	ctx = e.withLogger(ctx)
	log := logger.FromContext(ctx)

	if method == models.MethodDelete {
		payload = nil
	}
	candidate := models.QueuedOperation{
		Endpoint:   strings.TrimSpace(endpoint),
		Method:     method,
		Payload:    payload,
		MaxRetries: maxRetries,
	}
	if err := e.validator.Validate(ctx, candidate); err != nil {
		return "", err
	}
	endpoint = candidate.Endpoint
	if maxRetries == 0 {
		maxRetries = e.maxRetries
	}

	e.warnDuplicate(ctx, method, endpoint, payload)

	op, err := e.queue.Add(ctx, models.QueuedOperation{
		Endpoint:   endpoint,
		Method:     method,
		Payload:    payload,
		MaxRetries: maxRetries,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	e.metrics.Enqueued()
	log.Info().
		Str("operation_id", op.ID).
		Str("method", string(method)).
		Str("endpoint", endpoint).
		Msg("operation queued")

	e.status.Publish(ctx)
	if e.monitor.Online() {
		e.trigger("enqueue")
	}

	return op.ID, nil
}

// warnDuplicate logs when an identical write is already waiting. Both are kept.
func (e *syncEngine) warnDuplicate(ctx context.Context, method models.Method, endpoint string, payload json.RawMessage) {
	log := logger.FromContext(ctx)

	fp := utils.Fingerprint(string(method), endpoint, payload)
	n, err := e.queue.CountByFingerprint(ctx, fp, models.StatusPending)
	if err != nil {
		log.Err(err).Str("func", "syncEngine.warnDuplicate").Msg("failed to check for duplicate writes")
		return
	}
	if n > 0 {
		log.Warn().
			Str("method", string(method)).
			Str("endpoint", endpoint).
			Int("already_pending", n).
			Msg("identical write is already queued, both will be replayed")
	}
}

func (e *syncEngine) ClearAllQueued(ctx context.Context) (int64, error) {
	ctx = e.withLogger(ctx)

	n, err := e.queue.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	e.timersMu.Lock()
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
	e.timersMu.Unlock()

	logger.FromContext(ctx).Info().Int64("deleted", n).Msg("queue cleared")
	e.status.Publish(ctx)
	return n, nil
}

func (e *syncEngine) Resubmit(ctx context.Context, id string) (string, error) {
	ctx = e.withLogger(ctx)

	op, err := e.queue.Get(ctx, id)
	if errors.Is(err, store.ErrOperationNotFound) {
		return "", ErrOperationNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	if op.Status() != models.StatusFailed {
		return "", fmt.Errorf("%w: status is %s", ErrOperationNotFailed, op.Status())
	}

	fresh, err := e.queue.Add(ctx, models.QueuedOperation{
		Endpoint:   op.Endpoint,
		Method:     op.Method,
		Payload:    op.Payload,
		MaxRetries: op.MaxRetries,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	if err := e.queue.Delete(ctx, op.ID); err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	e.metrics.Enqueued()
	logger.FromContext(ctx).Info().
		Str("failed_id", op.ID).
		Str("operation_id", fresh.ID).
		Msg("failed operation resubmitted")

	e.status.Publish(ctx)
	if e.monitor.Online() {
		e.trigger("resubmit")
	}

	return fresh.ID, nil
}

func (e *syncEngine) Discard(ctx context.Context, id string) error {
	ctx = e.withLogger(ctx)

	e.cancelDeletion(id)
	if err := e.queue.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	e.status.Publish(ctx)
	return nil
}

func (e *syncEngine) ListOperations(ctx context.Context) ([]models.QueuedOperation, error) {
	ops, err := e.queue.GetAll(e.withLogger(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	return ops, nil
}

func (e *syncEngine) SetToken(token string) {
	e.gateway.SetToken(token)
	e.clearAuthRequired()
	e.status.Publish(e.logger.WithContext(context.Background()))
}

func (e *syncEngine) Subscribe(fn func(models.SyncState)) func() {
	return e.status.Subscribe(fn)
}

func (e *syncEngine) State(ctx context.Context) models.SyncState {
	return e.status.Snapshot(e.withLogger(ctx))
}

// ── flags ────────────────────────────────────────────────────────────────────

func (e *syncEngine) flags() EngineFlags {
	e.flagsMu.Lock()
	defer e.flagsMu.Unlock()

	f := EngineFlags{
		IsSyncing:    e.draining.Load(),
		AuthRequired: e.authRequired,
	}
	if e.lastSyncTime != nil {
		t := *e.lastSyncTime
		f.LastSyncTime = &t
	}
	return f
}

func (e *syncEngine) setLastSyncTime(t time.Time) {
	e.flagsMu.Lock()
	e.lastSyncTime = &t
	e.flagsMu.Unlock()
}

func (e *syncEngine) setAuthRequired() {
	e.flagsMu.Lock()
	e.authRequired = true
	e.flagsMu.Unlock()
}

func (e *syncEngine) clearAuthRequired() {
	e.flagsMu.Lock()
	e.authRequired = false
	e.flagsMu.Unlock()
}

// withLogger attaches the engine logger unless ctx already carries one.
func (e *syncEngine) withLogger(ctx context.Context) context.Context {
	if l := logger.FromContext(ctx); l.GetLevel() != zerolog.Disabled {
		return ctx
	}
	return e.logger.WithContext(ctx)
}
