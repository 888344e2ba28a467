// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-finance-sync/internal/adapter"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/reachability"
	"github.com/MKhiriev/go-finance-sync/internal/validators"
	"github.com/MKhiriev/go-finance-sync/models"
)

type recordService struct {
	engine    SyncEngine
	gateway   adapter.Gateway
	monitor   reachability.Monitor
	validator validators.Validator
	logger    *logger.Logger
}

// NewRecordService creates the offline-first write path on top of engine.
func NewRecordService(engine SyncEngine, gateway adapter.Gateway, monitor reachability.Monitor, logger *logger.Logger) RecordService {
	return &recordService{
		engine:    engine,
		gateway:   gateway,
		monitor:   monitor,
		validator: validators.NewOperationValidator(),
		logger:    logger,
	}
}

func (s *recordService) Create(ctx context.Context, endpoint string, payload json.RawMessage) (models.WriteResult, error) {
	return s.write(ctx, models.MethodCreate, endpoint, payload)
}

func (s *recordService) Update(ctx context.Context, endpoint string, payload json.RawMessage) (models.WriteResult, error) {
	return s.write(ctx, models.MethodUpdate, endpoint, payload)
}

func (s *recordService) Delete(ctx context.Context, endpoint string) (models.WriteResult, error) {
	return s.write(ctx, models.MethodDelete, endpoint, nil)
}

// write sends directly while online. Network errors and timeouts queue the
// write; any other failure goes back to the caller and nothing is queued.
func (s *recordService) write(ctx context.Context, method models.Method, endpoint string, payload json.RawMessage) (models.WriteResult, error) {
	log := logger.FromContext(ctx)

	endpoint = strings.TrimSpace(endpoint)
	// retry ceiling is settled later by the engine
	err := s.validator.Validate(ctx, models.QueuedOperation{Endpoint: endpoint, Method: method, Payload: payload},
		validators.FieldEndpoint, validators.FieldMethod, validators.FieldPayload)
	if err != nil {
		return models.WriteResult{}, err
	}

	if !s.monitor.Online() {
		return s.enqueue(ctx, method, endpoint, payload)
	}

	resp, err := s.gateway.Send(ctx, method, endpoint, payload)
	if err == nil {
		return models.WriteResult{Response: resp}, nil
	}

	if ctx.Err() != nil || !adapter.IsConnectivity(err) {
		return models.WriteResult{}, err
	}

	log.Warn().
		Err(err).
		Str("method", string(method)).
		Str("endpoint", endpoint).
		Msg("remote API unreachable, queueing write")

	return s.enqueue(ctx, method, endpoint, payload)
}

func (s *recordService) enqueue(ctx context.Context, method models.Method, endpoint string, payload json.RawMessage) (models.WriteResult, error) {
	id, err := s.engine.QueueOperation(ctx, endpoint, method, payload, 0)
	if err != nil {
		return models.WriteResult{}, fmt.Errorf("failed to queue %s %s: %w", method, endpoint, err)
	}
	return models.WriteResult{Queued: true, OperationID: id}, nil
}
