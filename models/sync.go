package models

import (
	"encoding/json"
	"time"
)

// ConnectivityStatus is the headline status shown to the user.
type ConnectivityStatus string

const (
	StatusOnline  ConnectivityStatus = "ONLINE"
	StatusOffline ConnectivityStatus = "OFFLINE"
	StatusSyncing ConnectivityStatus = "SYNCING"
)

// SyncState is the aggregate snapshot pushed to status subscribers.
// It is assembled on demand and never persisted.
type SyncState struct {
	Status       ConnectivityStatus `json:"status"`
	PendingCount int                `json:"pending_count"`
	FailedCount  int                `json:"failed_count"`
	LastSyncTime *time.Time         `json:"last_sync_time,omitempty"`
	IsSyncing    bool               `json:"is_syncing"`
	AuthRequired bool               `json:"auth_required"`
}

// DrainResult summarises one pass over the pending queue.
type DrainResult struct {
	// Synced is the number of operations the server accepted.
	Synced int `json:"synced"`

	// Retried is the number of operations that failed and stay pending.
	Retried int `json:"retried"`

	// Exhausted is the number of operations that reached FAILED in this pass.
	Exhausted int `json:"exhausted"`

	// Skipped is set when the pass did not run because the device was offline
	// or another pass was already in progress.
	Skipped bool `json:"skipped"`
}

// WriteResult is returned by the offline-first write path.
type WriteResult struct {
	// Queued reports whether the write was stored for later replay.
	Queued bool `json:"queued"`

	// OperationID is set when Queued is true.
	OperationID string `json:"operation_id,omitempty"`

	// Response is the server response body when the write went through.
	Response json.RawMessage `json:"response,omitempty"`
}

// QueueResponse is the diagnostics dump of the durable queue.
type QueueResponse struct {
	Operations []QueuedOperation `json:"operations"`
	Length     int               `json:"length"`
}

// ClearQueueResponse reports how many operations were deleted.
type ClearQueueResponse struct {
	Deleted int64 `json:"deleted"`
}

// ResubmitResponse carries the id of the re-queued copy.
type ResubmitResponse struct {
	OperationID string `json:"operation_id"`
}

// TokenRequest replaces the bearer token used for replay after a re-login.
type TokenRequest struct {
	Token string `json:"token"`
}
