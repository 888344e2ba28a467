package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrOperationNotFound is returned when an update targets a queued
	// operation that does not exist (for example, it was already purged).
	ErrOperationNotFound = errors.New("queued operation was not found")

	// ErrStateTransition is returned when an update targets an operation that
	// already left the PENDING state. FAILED and SYNCED are terminal.
	ErrStateTransition = errors.New("queued operation is no longer pending")

	// ErrPersistence marks every failure of the underlying database. It is
	// never retried by the sync engine.
	ErrPersistence = errors.New("queue persistence failure")
)

// Low-level database operation errors. These are wrapped together with
// [ErrPersistence] when a SQL-level operation fails.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan queued operation row")

	// ErrScanningRows is returned when multi-row iteration fails.
	ErrScanningRows = errors.New("failed to scan queued operation rows")
)

func persistenceError(kind, err error) error {
	return fmt.Errorf("%w: %w: %w", ErrPersistence, kind, err)
}
