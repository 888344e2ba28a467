// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// control API handlers and the terminal status badge.
//
// All Msg* constants are human-readable message strings written into HTTP
// response bodies or shown to the user. Keeping them in one place keeps the
// wording consistent between shells.
package app

const (
	// MsgErrorReadingBody is returned when a write request body cannot be
	// read or exceeds the size limit.
	MsgErrorReadingBody = "error reading request body"

	// MsgErrorListingQueue is returned when the durable queue cannot be read.
	MsgErrorListingQueue = "error listing queued operations"

	// MsgErrorClearingQueue is returned when the durable queue cannot be
	// cleared.
	MsgErrorClearingQueue = "error clearing queue"

	// MsgErrorDiscardingOperation is returned when a queued operation cannot
	// be deleted.
	MsgErrorDiscardingOperation = "error discarding operation"

	// MsgUnsupportedMediaType is returned when a write body is not JSON.
	MsgUnsupportedMediaType = "request body must be application/json"

	// MsgForbiddenOrigin is returned when a request comes from a page or host
	// that is not allowed to drive the agent.
	MsgForbiddenOrigin = "request origin is not allowed"

	// MsgInvalidToken is returned when a token update carries no token.
	MsgInvalidToken = "token is required"

	// MsgOffline is the banner shown while the device is disconnected.
	MsgOffline = "Offline: changes are saved and will sync later"

	// MsgReloginRequired is shown after a sync pass stopped on a rejected
	// token.
	MsgReloginRequired = "Session expired: sign in again to resume syncing"

	// MsgQueueCleared is shown after the user discarded every queued change.
	MsgQueueCleared = "Queue cleared"
)
