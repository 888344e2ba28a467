package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-finance-sync/internal/config"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
)

// Storages groups the agent's storage repositories and owns the database
// handle they share.
type Storages struct {
	// QueueRepository is the durable queue of pending write intents.
	QueueRepository QueueRepository

	db *DB
}

// NewStorages initialises the storage layer:
//  1. Opens the queue database named by cfg.DB.DSN (SQLite file or
//     PostgreSQL URL), creating the SQLite file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Wires a [QueueRepository] to the connection.
func NewStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnect(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("queue database connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		QueueRepository: NewQueueRepository(db, logger),
		db:              db,
	}, nil
}

// Close releases the database handle.
func (s *Storages) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
