// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport to the remote finance API.
//
// The primary abstraction is [Gateway]: method, endpoint and JSON body in,
// JSON response or a typed error out. The HTTP/REST implementation
// ([NewHTTPGateway]) attaches the bearer token and the caller's trace id.
//
// Error values defined in errors.go are mapped from HTTP status codes and
// from network failures so that callers can use [errors.Is] without knowing
// the transport (e.g. [ErrUnauthorized] for 401, [ErrNetwork] when the server
// could not be reached).
package adapter

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-finance-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/gateway_mock.go -package=mock

// Gateway sends one write to the remote API.
type Gateway interface {
	// SetToken stores the bearer token attached to every subsequent request.
	SetToken(token string)

	// Token returns the current bearer token, or "" if none is set.
	Token() string

	// Send issues method against endpoint with payload as the JSON body.
	// DELETE never carries a body. The response body is returned as is.
	Send(ctx context.Context, method models.Method, endpoint string, payload json.RawMessage) (json.RawMessage, error)
}
