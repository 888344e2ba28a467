package http

import (
	"github.com/MKhiriev/go-finance-sync/internal/config"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/metrics"
	"github.com/MKhiriev/go-finance-sync/internal/service"
)

type Handler struct {
	services *service.Services
	metrics  *metrics.Metrics
	origins  *originPolicy

	logger *logger.Logger
}

func NewHandler(services *service.Services, m *metrics.Metrics, cfg config.ClientServer, logger *logger.Logger) *Handler {
	logger.Info().Strs("allowed_origins", cfg.AllowedOrigins).Msg("http handler created")
	return &Handler{
		services: services,
		metrics:  m,
		origins:  newOriginPolicy(cfg.HTTPAddress, cfg.AllowedOrigins),
		logger:   logger,
	}
}
