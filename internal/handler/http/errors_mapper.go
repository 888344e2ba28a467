package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-finance-sync/internal/adapter"
	"github.com/MKhiriev/go-finance-sync/internal/service"
	"github.com/MKhiriev/go-finance-sync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrValidationNoEndpoint:      http.StatusBadRequest,
	service.ErrValidationInvalidEndpoint: http.StatusBadRequest,
	service.ErrValidationInvalidMethod:   http.StatusBadRequest,
	service.ErrValidationInvalidPayload:  http.StatusBadRequest,
	service.ErrValidationNegativeRetries: http.StatusBadRequest,
	service.ErrOperationNotFound:         http.StatusNotFound,
	service.ErrOperationNotFailed:        http.StatusConflict,
	service.ErrAuthentication:            http.StatusUnauthorized,
	service.ErrPersistenceFailure:        http.StatusServiceUnavailable,

	store.ErrPersistence: http.StatusServiceUnavailable,

	adapter.ErrUnauthorized: http.StatusUnauthorized,
	adapter.ErrBadRequest:   http.StatusBadRequest,
	adapter.ErrForbidden:    http.StatusForbidden,
	adapter.ErrNotFound:     http.StatusNotFound,
	adapter.ErrConflict:     http.StatusConflict,
	adapter.ErrRejected:     http.StatusUnprocessableEntity,
	adapter.ErrServer:       http.StatusBadGateway,
	adapter.ErrNetwork:      http.StatusBadGateway,
	adapter.ErrTimeout:      http.StatusGatewayTimeout,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
