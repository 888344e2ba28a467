package service

import (
	"errors"

	"github.com/MKhiriev/go-finance-sync/internal/validators"
)

var (
	// ErrTransient marks a replay failure that is worth retrying later.
	ErrTransient = errors.New("transient sync failure")
	// ErrAuthentication aborts a drain pass; the user must sign in again.
	ErrAuthentication = errors.New("authentication required")
	// ErrExhausted marks an operation that reached its retry ceiling.
	ErrExhausted = errors.New("operation exhausted its retries")
	// ErrPersistenceFailure is returned when the durable queue is unavailable.
	ErrPersistenceFailure = errors.New("queue persistence failure")

	ErrOperationNotFound  = errors.New("queued operation not found")
	ErrOperationNotFailed = errors.New("queued operation is not failed")

	ErrVersionIsNotSpecified = errors.New("version is not specified")

	ErrValidationNoEndpoint      = validators.ErrEmptyEndpoint
	ErrValidationInvalidEndpoint = validators.ErrInvalidEndpoint
	ErrValidationInvalidMethod   = validators.ErrInvalidMethod
	ErrValidationInvalidPayload  = validators.ErrInvalidPayload
	ErrValidationNegativeRetries = validators.ErrNegativeRetries
)
