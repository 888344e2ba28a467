package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeWithTraceID(h *Handler, requestTraceID string) (*httptest.ResponseRecorder, *http.Request) {
	var captured *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/sync/status", nil)
	if requestTraceID != "" {
		req.Header.Set(traceIDHeader, requestTraceID)
	}

	rr := httptest.NewRecorder()
	h.withTraceID(next).ServeHTTP(rr, req)
	return rr, captured
}

// ── Заголовок X-Trace-ID ─────────────────────────────────────────────────────

func TestWithTraceID_ReusesRequestHeader(t *testing.T) {
	h := &Handler{logger: logger.Nop()}

	rr, captured := executeWithTraceID(h, "shell-trace-1")

	require.NotNil(t, captured)
	assert.Equal(t, "shell-trace-1", rr.Header().Get(traceIDHeader))
}

func TestWithTraceID_GeneratesUUID(t *testing.T) {
	h := &Handler{logger: logger.Nop()}

	rr, _ := executeWithTraceID(h, "")

	_, err := uuid.Parse(rr.Header().Get(traceIDHeader))
	assert.NoError(t, err)
}

func TestWithTraceID_UniquePerRequest(t *testing.T) {
	h := &Handler{logger: logger.Nop()}

	first, _ := executeWithTraceID(h, "")
	second, _ := executeWithTraceID(h, "")

	assert.NotEqual(t, first.Header().Get(traceIDHeader), second.Header().Get(traceIDHeader))
}

// ── Контекст запроса ─────────────────────────────────────────────────────────

// trace id нужен шлюзу, чтобы переслать его удалённому API
func TestWithTraceID_StoresTraceIDInContext(t *testing.T) {
	h := &Handler{logger: logger.Nop()}

	rr, captured := executeWithTraceID(h, "")

	traceID, ok := utils.GetTraceIDFromContext(captured.Context())
	require.True(t, ok)
	assert.Equal(t, rr.Header().Get(traceIDHeader), traceID)
}

func TestWithTraceID_AttachesLoggerWithTraceID(t *testing.T) {
	buf := &bytes.Buffer{}
	h := &Handler{logger: &logger.Logger{Logger: zerolog.New(buf)}}

	_, captured := executeWithTraceID(h, "trace-42")

	logger.FromRequest(captured).Info().Msg("inside handler")
	assert.Contains(t, buf.String(), `"trace_id":"trace-42"`)
}

func TestWithTraceID_ParentLoggerUntouched(t *testing.T) {
	buf := &bytes.Buffer{}
	h := &Handler{logger: &logger.Logger{Logger: zerolog.New(buf)}}

	executeWithTraceID(h, "trace-42")

	h.logger.Info().Msg("outside")
	assert.NotContains(t, buf.String(), "trace_id")
}
