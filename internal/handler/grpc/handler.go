// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"sync"

	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/service"
	"github.com/MKhiriev/go-finance-sync/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// SyncServiceName is the health service name desktop and mobile shells
// watch to learn whether the agent can reach the remote API.
const SyncServiceName = "finsync.Sync"

// Handler is the root gRPC transport handler.
//
// It exposes grpc.health.v1.Health. The overall server status is always
// SERVING while the listener is up; [SyncServiceName] is SERVING while the
// device is online and NOT_SERVING while it is offline.
type Handler struct {
	services *service.Services
	health   *health.Server

	mu          sync.Mutex
	unsubscribe func()

	logger *logger.Logger
}

// NewHandler constructs a [Handler] with the provided service container and
// logger.
func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")

	h := &Handler{
		services: services,
		health:   health.NewServer(),
		logger:   logger,
	}
	h.health.SetServingStatus(SyncServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return h
}

// Register attaches the health service to srv and starts following the
// sync state.
func (h *Handler) Register(srv grpc.ServiceRegistrar) {
	healthpb.RegisterHealthServer(srv, h.health)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unsubscribe == nil {
		h.unsubscribe = h.services.SyncEngine.Subscribe(h.onState)
	}
}

// Close stops following the sync state and moves every service to
// NOT_SERVING so that watchers see the shutdown.
func (h *Handler) Close() {
	h.mu.Lock()
	unsubscribe := h.unsubscribe
	h.unsubscribe = nil
	h.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	h.health.Shutdown()
}

func (h *Handler) onState(state models.SyncState) {
	status := healthpb.HealthCheckResponse_SERVING
	if state.Status == models.StatusOffline {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus(SyncServiceName, status)
}
