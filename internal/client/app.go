package client

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/MKhiriev/go-finance-sync/internal/adapter"
	"github.com/MKhiriev/go-finance-sync/internal/config"
	"github.com/MKhiriev/go-finance-sync/internal/handler"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/metrics"
	"github.com/MKhiriev/go-finance-sync/internal/reachability"
	"github.com/MKhiriev/go-finance-sync/internal/server"
	"github.com/MKhiriev/go-finance-sync/internal/service"
	"github.com/MKhiriev/go-finance-sync/internal/store"
	"github.com/MKhiriev/go-finance-sync/internal/tui"
	"github.com/MKhiriev/go-finance-sync/internal/workers"
	"github.com/MKhiriev/go-finance-sync/models"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	storages *store.Storages
	services *service.Services
	server   server.Server
	workers  *workers.Workers
	tui      *tui.TUI

	logger *logger.Logger
}

// NewApp wires the agent: queue storage (with migrations), gateway, prober,
// services, transports and, when enabled, the status badge.
func NewApp(cfg *config.ClientConfig, buildInfo models.AppBuildInfo, logger *logger.Logger) (*App, error) {
	storages, err := store.NewStorages(context.Background(), cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("create storages: %w", err)
	}

	app, err := newApp(cfg, storages, buildInfo, logger)
	if err != nil {
		_ = storages.Close()
		return nil, err
	}
	return app, nil
}

func newApp(cfg *config.ClientConfig, storages *store.Storages, buildInfo models.AppBuildInfo, logger *logger.Logger) (*App, error) {
	gateway, err := adapter.NewHTTPGateway(cfg.Adapter, logger)
	if err != nil {
		return nil, fmt.Errorf("create gateway: %w", err)
	}

	prober := reachability.NewProber(cfg.Sync, logger)
	m := metrics.New()

	services, err := service.NewServices(storages, gateway, prober, cfg, buildInfo, m, logger)
	if err != nil {
		return nil, fmt.Errorf("create services: %w", err)
	}

	handlers, err := handler.NewHandlers(services, m, cfg.Server, logger)
	if err != nil {
		return nil, fmt.Errorf("create handlers: %w", err)
	}

	srv, err := server.NewServer(handlers, cfg.Server, logger)
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}

	app := &App{
		storages: storages,
		services: services,
		server:   srv,
		// the prober runs its first probe synchronously, so the engine
		// starts with an accurate belief; stop order is the reverse
		workers: workers.NewWorkers(logger, prober, services.SyncEngine, services.SyncJob),
		logger:  logger,
	}
	if cfg.App.TUI {
		app.tui = tui.New(services.SyncEngine, logger)
	}

	return app, nil
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	return a.run(ctx)
}

// run blocks until ctx is done or the badge is closed, then shuts the
// transports down, stops workers in reverse order and closes the queue.
func (a *App) run(ctx context.Context) (err error) {
	defer func() {
		if closeErr := a.storages.Close(); closeErr != nil {
			a.logger.Err(closeErr).Str("func", "*App.run").Msg("error closing storages")
			err = errors.Join(err, closeErr)
		}
	}()

	if err = a.workers.Start(ctx); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}

	if err = a.server.RunServer(); err != nil {
		a.workers.Stop()
		return fmt.Errorf("run server: %w", err)
	}

	a.logger.Info().Msg("sync agent is running")
	if a.tui != nil {
		if tuiErr := a.tui.Run(ctx); tuiErr != nil {
			err = fmt.Errorf("status badge: %w", tuiErr)
		}
	} else {
		<-ctx.Done()
	}
	a.logger.Info().Msg("sync agent is stopping")

	// no control API requests may reach the engine once it is stopped
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := a.server.Shutdown(shutdownCtx); shutdownErr != nil {
		a.logger.Err(shutdownErr).Str("func", "*App.run").Msg("error shutting down server")
		err = errors.Join(err, shutdownErr)
	}

	a.workers.Stop()

	return err
}
