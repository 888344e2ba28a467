package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyEndpoint   = errors.New("no endpoint provided")
	ErrInvalidEndpoint = errors.New("endpoint must be a path relative to the API base URL")
	ErrInvalidMethod   = errors.New("invalid operation method")
	ErrInvalidPayload  = errors.New("payload is not valid JSON")
	ErrPayloadOnDelete = errors.New("delete must not carry a payload")
	ErrNegativeRetries = errors.New("max retries must not be negative")
)
