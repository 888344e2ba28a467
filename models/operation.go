// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultMaxRetries is the replay ceiling applied when an operation is queued
// without an explicit limit.
const DefaultMaxRetries = 3

var (
	// ErrUnknownMethod is returned when a method string does not name one of
	// the supported mutation kinds.
	ErrUnknownMethod = errors.New("unknown operation method")

	// ErrUnknownStatus is returned when a persisted status cannot be mapped
	// to an operation state.
	ErrUnknownStatus = errors.New("unknown operation status")
)

// Method is the kind of mutation a queued operation replays against the
// remote API.
type Method string

const (
	// MethodCreate replays as HTTP POST.
	MethodCreate Method = "CREATE"

	// MethodUpdate replays as HTTP PUT.
	MethodUpdate Method = "UPDATE"

	// MethodDelete replays as HTTP DELETE and never carries a payload.
	MethodDelete Method = "DELETE"
)

// HTTPMethod returns the wire verb used when the operation is sent.
func (m Method) HTTPMethod() string {
	switch m {
	case MethodCreate:
		return http.MethodPost
	case MethodUpdate:
		return http.MethodPut
	case MethodDelete:
		return http.MethodDelete
	}
	return ""
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	return m.HTTPMethod() != ""
}

// ParseMethod converts a stored method string into a [Method].
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
	return m, nil
}

// MethodFromHTTP maps an HTTP verb to the matching mutation kind.
func MethodFromHTTP(verb string) (Method, bool) {
	switch verb {
	case http.MethodPost:
		return MethodCreate, true
	case http.MethodPut, http.MethodPatch:
		return MethodUpdate, true
	case http.MethodDelete:
		return MethodDelete, true
	}
	return "", false
}

// Status is the persisted lifecycle stage of a queued operation.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusFailed  Status = "FAILED"
	StatusSynced  Status = "SYNCED"
)

// OperationState is the closed set of lifecycle stages of a queued operation.
// Only [Pending] exposes transitions, so a state can move forward but never
// back to PENDING.
type OperationState interface {
	Status() Status
	Retries() int
	operationState()
}

// Pending is an operation still waiting to be replayed.
type Pending struct {
	RetryCount int
	LastError  string
}

// Failed is an operation that exhausted its retries. It is terminal.
type Failed struct {
	RetryCount int
	LastError  string
}

// Synced is an operation the server accepted. It is kept for a grace period
// and then purged.
type Synced struct {
	RetryCount int
	SyncedAt   time.Time
}

func (Pending) Status() Status { return StatusPending }
func (Failed) Status() Status  { return StatusFailed }
func (Synced) Status() Status  { return StatusSynced }

func (p Pending) Retries() int { return p.RetryCount }
func (f Failed) Retries() int  { return f.RetryCount }
func (s Synced) Retries() int  { return s.RetryCount }

func (Pending) operationState() {}
func (Failed) operationState()  {}
func (Synced) operationState()  {}

// RecordFailure counts one more failed replay. The operation becomes [Failed]
// once the retry count reaches maxRetries.
func (p Pending) RecordFailure(reason string, maxRetries int) OperationState {
	retries := p.RetryCount + 1
	if retries >= maxRetries {
		return Failed{RetryCount: retries, LastError: reason}
	}
	return Pending{RetryCount: retries, LastError: reason}
}

// MarkSynced moves the operation to [Synced]. The last error is dropped.
func (p Pending) MarkSynced(at time.Time) Synced {
	return Synced{RetryCount: p.RetryCount, SyncedAt: at}
}

// RestoreState rebuilds an [OperationState] from its persisted columns.
func RestoreState(status Status, retryCount int, lastError string, syncedAt *time.Time) (OperationState, error) {
	switch status {
	case StatusPending:
		return Pending{RetryCount: retryCount, LastError: lastError}, nil
	case StatusFailed:
		return Failed{RetryCount: retryCount, LastError: lastError}, nil
	case StatusSynced:
		s := Synced{RetryCount: retryCount}
		if syncedAt != nil {
			s.SyncedAt = *syncedAt
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
}

// QueuedOperation is the durable record of one write that could not reach the
// server. Everything except State is fixed at insert time.
type QueuedOperation struct {
	// ID is a UUIDv7 assigned when the operation is stored.
	ID string

	// Endpoint is the resource path the operation is replayed against.
	Endpoint string

	// Method selects the wire verb.
	Method Method

	// Payload is the opaque JSON body. It is nil for [MethodDelete].
	Payload json.RawMessage

	// EnqueuedAt fixes the replay order.
	EnqueuedAt time.Time

	// MaxRetries is the per-operation replay ceiling.
	MaxRetries int

	// Fingerprint identifies writes with the same method, endpoint and payload.
	Fingerprint string

	// State carries the status together with its retry bookkeeping.
	State OperationState
}

// Status returns the current lifecycle status.
func (o QueuedOperation) Status() Status {
	if o.State == nil {
		return StatusPending
	}
	return o.State.Status()
}

// RetryCount returns the number of failed replays so far.
func (o QueuedOperation) RetryCount() int {
	if o.State == nil {
		return 0
	}
	return o.State.Retries()
}

// LastError returns the last recorded failure reason, if any.
func (o QueuedOperation) LastError() string {
	switch s := o.State.(type) {
	case Pending:
		return s.LastError
	case Failed:
		return s.LastError
	}
	return ""
}

type queuedOperationJSON struct {
	ID         string          `json:"id"`
	Endpoint   string          `json:"endpoint"`
	Method     Method          `json:"method"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	MaxRetries int             `json:"max_retries"`
	Status     Status          `json:"status"`
	RetryCount int             `json:"retry_count"`
	LastError  string          `json:"last_error,omitempty"`
	SyncedAt   *time.Time      `json:"synced_at,omitempty"`
}

// MarshalJSON flattens the state variant into status, retry and error fields.
func (o QueuedOperation) MarshalJSON() ([]byte, error) {
	v := queuedOperationJSON{
		ID:         o.ID,
		Endpoint:   o.Endpoint,
		Method:     o.Method,
		Payload:    o.Payload,
		EnqueuedAt: o.EnqueuedAt,
		MaxRetries: o.MaxRetries,
		Status:     o.Status(),
		RetryCount: o.RetryCount(),
		LastError:  o.LastError(),
	}
	if s, ok := o.State.(Synced); ok {
		v.SyncedAt = &s.SyncedAt
	}
	return json.Marshal(v)
}

// UnmarshalJSON restores the state variant from its flattened form.
func (o *QueuedOperation) UnmarshalJSON(b []byte) error {
	var v queuedOperationJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	state, err := RestoreState(v.Status, v.RetryCount, v.LastError, v.SyncedAt)
	if err != nil {
		return err
	}

	*o = QueuedOperation{
		ID:         v.ID,
		Endpoint:   v.Endpoint,
		Method:     v.Method,
		Payload:    v.Payload,
		EnqueuedAt: v.EnqueuedAt,
		MaxRetries: v.MaxRetries,
		State:      state,
	}
	return nil
}
