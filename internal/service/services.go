package service

import (
	"github.com/MKhiriev/go-finance-sync/internal/adapter"
	"github.com/MKhiriev/go-finance-sync/internal/config"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/metrics"
	"github.com/MKhiriev/go-finance-sync/internal/reachability"
	"github.com/MKhiriev/go-finance-sync/internal/store"
	"github.com/MKhiriev/go-finance-sync/models"
)

type Services struct {
	SyncEngine     SyncEngine
	SyncJob        SyncJob
	RecordService  RecordService
	AppInfoService AppInfoService
}

func NewServices(
	storages *store.Storages,
	gateway adapter.Gateway,
	monitor reachability.Monitor,
	cfg *config.ClientConfig,
	buildInfo models.AppBuildInfo,
	m *metrics.Metrics,
	logger *logger.Logger,
) (*Services, error) {
	appInfo, err := NewAppInfoService(buildInfo, logger)
	if err != nil {
		return nil, err
	}

	engine := NewSyncEngine(storages.QueueRepository, gateway, monitor, cfg.Sync, m, logger)

	return &Services{
		SyncEngine:     engine,
		SyncJob:        NewSyncJob(engine, monitor, cfg.Workers.SyncInterval, logger),
		RecordService:  NewRecordService(engine, gateway, monitor, logger),
		AppInfoService: appInfo,
	}, nil
}
