package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/reachability"
)

const defaultSyncJobInterval = 30 * time.Second

type syncJob struct {
	engine   SyncEngine
	monitor  reachability.Monitor
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a job that calls engine.Drain on a ticker while the
// monitor reports online. If interval is zero or negative it defaults to 30
// seconds. The job is idle until Start is called.
func NewSyncJob(engine SyncEngine, monitor reachability.Monitor, interval time.Duration, logger *logger.Logger) SyncJob {
	if interval <= 0 {
		interval = defaultSyncJobInterval
	}
	return &syncJob{
		engine:   engine,
		monitor:  monitor,
		interval: interval,
		logger:   logger,
	}
}

// Start implements SyncJob. It stops any previously running job, then
// launches a background goroutine that drains every interval. The goroutine
// exits when ctx is cancelled or Stop is called.
func (j *syncJob) Start(ctx context.Context) error {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(j.logger.WithContext(ctx))
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				if !j.monitor.Online() {
					continue
				}
				if _, err := j.engine.Drain(jobCtx); err != nil && jobCtx.Err() == nil {
					j.logger.Err(err).Str("func", "syncJob.Start").Msg("periodic drain failed")
				}
			}
		}
	}()

	return nil
}

// Stop implements SyncJob. Safe to call when the job is not running.
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
