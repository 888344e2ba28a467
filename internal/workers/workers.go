package workers

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-finance-sync/internal/logger"
)

type Workers struct {
	workers []Worker
	started int

	logger *logger.Logger
}

func NewWorkers(logger *logger.Logger, workers ...Worker) *Workers {
	return &Workers{workers: workers, logger: logger}
}

// Start starts every worker in order. If one fails, the ones already started
// are stopped in reverse order and the error is returned.
func (w *Workers) Start(ctx context.Context) error {
	for i, worker := range w.workers {
		if err := worker.Start(ctx); err != nil {
			w.logger.Err(err).Str("func", "*Workers.Start").Int("worker", i).Msg("worker failed to start")
			w.started = i
			w.Stop()
			return fmt.Errorf("failed to start worker %d (%T): %w", i, worker, err)
		}
		w.started = i + 1
	}

	w.logger.Info().Int("count", w.started).Msg("workers started")
	return nil
}

// Stop stops the started workers in reverse order.
func (w *Workers) Stop() {
	for i := w.started - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
	if w.started > 0 {
		w.logger.Info().Int("count", w.started).Msg("workers stopped")
	}
	w.started = 0
}
