// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/go-finance-sync/models"
)

// SyncEngine replays the durable queue against the remote API.
//
// At most one drain pass runs at a time; a trigger that arrives while a pass
// is in progress is a no-op. Operations are replayed one by one in enqueue
// order.
type SyncEngine interface {
	// Start purges SYNCED operations left over from the previous run,
	// subscribes to reachability changes and drains once if online.
	Start(ctx context.Context) error

	// Stop cancels background drains, waits for them and stops the pending
	// grace timers. Operations whose timers were stopped are purged on the
	// next Start.
	Stop()

	// Drain runs one pass over the PENDING operations. The result has
	// Skipped set when the device is offline or a pass is already running.
	// Only ErrAuthentication, ErrPersistenceFailure and the context error are
	// returned; every other replay failure is recorded on the operation.
	Drain(ctx context.Context) (models.DrainResult, error)

	// ForceSyncNow is the user-initiated Drain.
	ForceSyncNow(ctx context.Context) (models.DrainResult, error)

	// QueueOperation persists a write for later replay and returns its id.
	// maxRetries of 0 selects the configured default. A drain is triggered
	// in the background when the device is online.
	QueueOperation(ctx context.Context, endpoint string, method models.Method, payload json.RawMessage, maxRetries int) (string, error)

	// ClearAllQueued deletes every queued operation regardless of status.
	ClearAllQueued(ctx context.Context) (int64, error)

	// Resubmit re-queues a FAILED operation as a brand-new PENDING one and
	// removes the failed record. The new id is returned.
	Resubmit(ctx context.Context, id string) (string, error)

	// Discard deletes one operation regardless of status.
	Discard(ctx context.Context, id string) error

	ListOperations(ctx context.Context) ([]models.QueuedOperation, error)

	// SetToken replaces the bearer token and clears the re-login alert.
	SetToken(token string)

	// Subscribe registers fn for status snapshots. fn receives the current
	// snapshot before Subscribe returns.
	Subscribe(fn func(models.SyncState)) (unsubscribe func())

	// State assembles the current snapshot.
	State(ctx context.Context) models.SyncState
}

// StatusBroadcaster pushes [models.SyncState] snapshots to subscribers.
//
// Callbacks run synchronously on the publishing goroutine and must not call
// back into the broadcaster.
type StatusBroadcaster interface {
	Subscribe(fn func(models.SyncState)) (unsubscribe func())
	Publish(ctx context.Context)
	Snapshot(ctx context.Context) models.SyncState
}

// RecordService is the offline-first write path. A write goes straight to
// the remote API when possible and is queued when the network is the
// problem.
type RecordService interface {
	Create(ctx context.Context, endpoint string, payload json.RawMessage) (models.WriteResult, error)
	Update(ctx context.Context, endpoint string, payload json.RawMessage) (models.WriteResult, error)
	Delete(ctx context.Context, endpoint string) (models.WriteResult, error)
}

// SyncJob periodically drains the queue while the device is online.
type SyncJob interface {
	// Start launches the ticker goroutine. Any running job is stopped first.
	Start(ctx context.Context) error

	// Stop signals the goroutine to exit and blocks until it has.
	Stop()
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetBuildInfo(ctx context.Context) models.BuildInfoResponse
}

// EngineFlags is the part of a snapshot owned by the sync engine.
type EngineFlags struct {
	IsSyncing    bool
	LastSyncTime *time.Time
	AuthRequired bool
}
