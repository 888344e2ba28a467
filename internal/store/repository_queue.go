// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/utils"
	"github.com/MKhiriev/go-finance-sync/models"
	sq "github.com/Masterminds/squirrel"
)

// queueRepository is the SQL implementation of [QueueRepository]. It works
// on both SQLite and PostgreSQL; the dialect only changes placeholders.
//
// All methods obtain a context-scoped logger via [logger.FromContext].
type queueRepository struct {
	db     *DB
	logger *logger.Logger
	ids    *utils.UUIDGenerator
	now    func() time.Time
}

// NewQueueRepository constructs a [QueueRepository] backed by db.
func NewQueueRepository(db *DB, logger *logger.Logger) QueueRepository {
	logger.Debug().Msg("creating queue repository")
	return &queueRepository{
		db:     db,
		logger: logger,
		ids:    utils.NewUUIDGenerator(),
		now:    time.Now,
	}
}

// Add persists op as PENDING with a fresh id, enqueue time and fingerprint.
// A failure is always returned: a lost write intent cannot be recovered.
func (r *queueRepository) Add(ctx context.Context, op models.QueuedOperation) (models.QueuedOperation, error) {
	log := logger.FromContext(ctx)

	op.ID = r.ids.Generate()
	op.EnqueuedAt = r.now()
	op.State = models.Pending{}
	if op.MaxRetries <= 0 {
		op.MaxRetries = models.DefaultMaxRetries
	}
	if op.Method == models.MethodDelete {
		op.Payload = nil
	}
	op.Fingerprint = utils.Fingerprint(string(op.Method), op.Endpoint, op.Payload)

	query, args, err := r.db.builder().
		Insert(queueTable).
		Columns(queueColumns...).
		Values(
			op.ID,
			op.Endpoint,
			string(op.Method),
			nullablePayload(op.Payload),
			op.Fingerprint,
			op.EnqueuedAt.UnixNano(),
			op.MaxRetries,
			string(models.StatusPending),
			0,
			nil,
			nil,
		).
		ToSql()
	if err != nil {
		return models.QueuedOperation{}, persistenceError(ErrBuildingSQLQuery, err)
	}

	err = r.db.withRetry(ctx, func() error {
		_, execErr := r.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Add").
			Str("endpoint", op.Endpoint).
			Str("method", string(op.Method)).
			Msg("failed to insert queued operation")
		return models.QueuedOperation{}, persistenceError(ErrExecutingStatement, err)
	}

	return op, nil
}

func (r *queueRepository) GetPending(ctx context.Context) ([]models.QueuedOperation, error) {
	return r.list(ctx, "queueRepository.GetPending", sq.Eq{"status": string(models.StatusPending)})
}

func (r *queueRepository) GetAll(ctx context.Context) ([]models.QueuedOperation, error) {
	return r.list(ctx, "queueRepository.GetAll", nil)
}

func (r *queueRepository) Get(ctx context.Context, id string) (models.QueuedOperation, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder().
		Select(queueColumns...).
		From(queueTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.QueuedOperation{}, persistenceError(ErrBuildingSQLQuery, err)
	}

	var op models.QueuedOperation
	err = r.db.withRetry(ctx, func() error {
		var scanErr error
		op, scanErr = scanOperation(r.db.QueryRowContext(ctx, query, args...))
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.QueuedOperation{}, ErrOperationNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Get").
			Str("operation_id", id).
			Msg("failed to read queued operation")
		return models.QueuedOperation{}, persistenceError(ErrScanningRow, err)
	}

	return op, nil
}

// Update writes the mutable columns of a PENDING operation. Only PENDING
// rows are touched so a terminal state can never be overwritten.
func (r *queueRepository) Update(ctx context.Context, id string, state models.OperationState) error {
	log := logger.FromContext(ctx)

	var (
		lastError any
		syncedAt  any
	)
	switch s := state.(type) {
	case models.Pending:
		lastError = nullableString(s.LastError)
	case models.Failed:
		lastError = nullableString(s.LastError)
	case models.Synced:
		syncedAt = s.SyncedAt.UnixNano()
	}

	query, args, err := r.db.builder().
		Update(queueTable).
		Set("status", string(state.Status())).
		Set("retry_count", state.Retries()).
		Set("last_error", lastError).
		Set("synced_at", syncedAt).
		Where(sq.Eq{"id": id, "status": string(models.StatusPending)}).
		ToSql()
	if err != nil {
		return persistenceError(ErrBuildingSQLQuery, err)
	}

	var affected int64
	err = r.db.withRetry(ctx, func() error {
		res, execErr := r.db.ExecContext(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Update").
			Str("operation_id", id).
			Str("status", string(state.Status())).
			Msg("failed to update queued operation")
		return persistenceError(ErrExecutingStatement, err)
	}

	if affected > 0 {
		return nil
	}

	// nothing updated: either gone or already terminal
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return ErrStateTransition
}

func (r *queueRepository) Delete(ctx context.Context, id string) error {
	_, err := r.delete(ctx, "queueRepository.Delete", sq.Eq{"id": id})
	return err
}

func (r *queueRepository) DeleteAll(ctx context.Context) (int64, error) {
	return r.delete(ctx, "queueRepository.DeleteAll", nil)
}

func (r *queueRepository) PurgeSynced(ctx context.Context, before time.Time) (int64, error) {
	return r.delete(ctx, "queueRepository.PurgeSynced", sq.And{
		sq.Eq{"status": string(models.StatusSynced)},
		sq.LtOrEq{"synced_at": before.UnixNano()},
	})
}

func (r *queueRepository) Count(ctx context.Context, status models.Status) (int, error) {
	return r.count(ctx, "queueRepository.Count", sq.Eq{"status": string(status)})
}

func (r *queueRepository) CountByFingerprint(ctx context.Context, fingerprint string, status models.Status) (int, error) {
	return r.count(ctx, "queueRepository.CountByFingerprint", sq.Eq{
		"fingerprint": fingerprint,
		"status":      string(status),
	})
}

func (r *queueRepository) list(ctx context.Context, fn string, where sq.Sqlizer) ([]models.QueuedOperation, error) {
	log := logger.FromContext(ctx)

	builder := r.db.builder().
		Select(queueColumns...).
		From(queueTable).
		OrderBy(queueOrder...)
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, persistenceError(ErrBuildingSQLQuery, err)
	}

	var ops []models.QueuedOperation
	err = r.db.withRetry(ctx, func() error {
		rows, queryErr := r.db.QueryContext(ctx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		ops = ops[:0]
		for rows.Next() {
			op, scanErr := scanOperation(rows)
			if scanErr != nil {
				return scanErr
			}
			ops = append(ops, op)
		}
		return rows.Err()
	})
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to list queued operations")
		return nil, persistenceError(ErrExecutingQuery, err)
	}

	return ops, nil
}

func (r *queueRepository) delete(ctx context.Context, fn string, where sq.Sqlizer) (int64, error) {
	log := logger.FromContext(ctx)

	builder := r.db.builder().Delete(queueTable)
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, persistenceError(ErrBuildingSQLQuery, err)
	}

	var affected int64
	err = r.db.withRetry(ctx, func() error {
		res, execErr := r.db.ExecContext(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to delete queued operations")
		return 0, persistenceError(ErrExecutingStatement, err)
	}

	return affected, nil
}

func (r *queueRepository) count(ctx context.Context, fn string, where sq.Sqlizer) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder().
		Select("COUNT(*)").
		From(queueTable).
		Where(where).
		ToSql()
	if err != nil {
		return 0, persistenceError(ErrBuildingSQLQuery, err)
	}

	var n int
	err = r.db.withRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	})
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to count queued operations")
		return 0, persistenceError(ErrExecutingQuery, err)
	}

	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOperation(row rowScanner) (models.QueuedOperation, error) {
	var (
		op         models.QueuedOperation
		method     string
		status     string
		payload    sql.NullString
		enqueuedAt int64
		retryCount int
		lastError  sql.NullString
		syncedAt   sql.NullInt64
	)

	err := row.Scan(
		&op.ID,
		&op.Endpoint,
		&method,
		&payload,
		&op.Fingerprint,
		&enqueuedAt,
		&op.MaxRetries,
		&status,
		&retryCount,
		&lastError,
		&syncedAt,
	)
	if err != nil {
		return models.QueuedOperation{}, err
	}

	if op.Method, err = models.ParseMethod(method); err != nil {
		return models.QueuedOperation{}, err
	}
	if payload.Valid {
		op.Payload = json.RawMessage(payload.String)
	}
	op.EnqueuedAt = time.Unix(0, enqueuedAt)

	var synced *time.Time
	if syncedAt.Valid {
		t := time.Unix(0, syncedAt.Int64)
		synced = &t
	}

	if op.State, err = models.RestoreState(models.Status(status), retryCount, lastError.String, synced); err != nil {
		return models.QueuedOperation{}, err
	}

	return op, nil
}

func nullablePayload(p json.RawMessage) any {
	if len(p) == 0 {
		return nil
	}
	return string(p)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
