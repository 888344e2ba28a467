package adapter

import "errors"

// Transport errors returned by [Gateway.Send]. HTTP failures are mapped from
// the status code by mapHTTPError; network failures by mapTransportError.
var (
	// ErrUnauthorized means the server rejected the credentials (401) or the
	// local token is already expired. It is the only channel-level failure.
	ErrUnauthorized = errors.New("client unauthorized")

	ErrBadRequest = errors.New("bad request")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	// ErrRejected covers the remaining 4xx responses.
	ErrRejected = errors.New("request rejected")

	// ErrServer covers 5xx and 429 responses.
	ErrServer = errors.New("server error")

	// ErrNetwork means the request never got a response.
	ErrNetwork = errors.New("network error")

	// ErrTimeout means the request ran out of time, locally or with a 408.
	ErrTimeout = errors.New("request timeout")

	ErrUnsupportedMethod = errors.New("unsupported operation method")
)

// IsConnectivity reports whether err means the server could not be reached.
// Such writes are safe to queue for later replay.
func IsConnectivity(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrTimeout)
}
