package validators

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-finance-sync/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	// FieldEndpoint targets the path relative to the remote API base URL.
	FieldEndpoint = "endpoint"

	// FieldMethod targets the mutation kind.
	FieldMethod = "method"

	// FieldPayload targets the JSON body. DELETE must not carry one.
	FieldPayload = "payload"

	// FieldMaxRetries targets the per-operation replay ceiling.
	FieldMaxRetries = "max_retries"
)

type OperationValidator struct {
}

func NewOperationValidator() Validator {
	return &OperationValidator{}
}

func (v *OperationValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.QueuedOperation:
		return v.validateOperation(ctx, value, fields...)
	case *models.QueuedOperation:
		return v.validateOperation(ctx, *value, fields...)
	default:
		return ErrUnsupportedType
	}
}

func (v *OperationValidator) validateOperation(_ context.Context, op models.QueuedOperation, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEndpoint, FieldMethod, FieldPayload, FieldMaxRetries}
	}

	for _, f := range fields {
		switch f {
		case FieldEndpoint:
			endpoint := strings.TrimSpace(op.Endpoint)
			if endpoint == "" {
				return ErrEmptyEndpoint
			}
			if strings.Contains(endpoint, "://") {
				return fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
			}
		case FieldMethod:
			if !op.Method.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidMethod, op.Method)
			}
		case FieldPayload:
			if op.Method == models.MethodDelete && len(op.Payload) > 0 {
				return ErrPayloadOnDelete
			}
			if len(op.Payload) > 0 && !json.Valid(op.Payload) {
				return ErrInvalidPayload
			}
		case FieldMaxRetries:
			if op.MaxRetries < 0 {
				return ErrNegativeRetries
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}
