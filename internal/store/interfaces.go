package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-finance-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// QueueRepository is the durable queue of write intents waiting to be
// replayed against the remote API.
type QueueRepository interface {
	// Add stores op as a new PENDING operation. The id, enqueue time and
	// fingerprint are assigned here; the stored record is returned.
	Add(ctx context.Context, op models.QueuedOperation) (models.QueuedOperation, error)
	// GetPending returns PENDING operations in enqueue order.
	GetPending(ctx context.Context) ([]models.QueuedOperation, error)
	Get(ctx context.Context, id string) (models.QueuedOperation, error)
	// Update stores the new state of a PENDING operation.
	Update(ctx context.Context, id string, state models.OperationState) error
	// Delete removes the operation. Missing ids are not an error.
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]models.QueuedOperation, error)
	Count(ctx context.Context, status models.Status) (int, error)
	CountByFingerprint(ctx context.Context, fingerprint string, status models.Status) (int, error)
	// PurgeSynced removes SYNCED operations accepted at or before the given time.
	PurgeSynced(ctx context.Context, before time.Time) (int64, error)
}

// ErrorClassificator decides whether a driver error is worth retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
