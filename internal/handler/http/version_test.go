package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-finance-sync/internal/config"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/metrics"
	"github.com/MKhiriev/go-finance-sync/internal/service"
	"github.com/MKhiriev/go-finance-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────
// Mock
// ─────────────────────────────────────────────

type mockAppInfoService struct {
	info models.BuildInfoResponse
}

func (m *mockAppInfoService) GetAppVersion(_ context.Context) string {
	return m.info.Version
}

func (m *mockAppInfoService) GetBuildInfo(_ context.Context) models.BuildInfoResponse {
	return m.info
}

// newHandlerWithAppInfo leaves every other service nil; the version routes
// do not touch them.
func newHandlerWithAppInfo(svc service.AppInfoService) *Handler {
	return NewHandler(&service.Services{AppInfoService: svc}, metrics.New(), config.ClientServer{}, logger.Nop())
}

// ─────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────

func TestGetAppVersion_TableTest(t *testing.T) {
	for _, want := range []string{"1.2.3", "v2.0.0-beta+build.42", "N/A"} {
		t.Run(want, func(t *testing.T) {
			h := newHandlerWithAppInfo(&mockAppInfoService{info: models.BuildInfoResponse{Version: want}})
			rec := httptest.NewRecorder()

			h.getAppVersion(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, want, rec.Body.String())
			assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
		})
	}
}

func TestGetAppVersion_ViaRouter(t *testing.T) {
	h := newHandlerWithAppInfo(&mockAppInfoService{info: models.BuildInfoResponse{Version: "3.0.0"}})

	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://127.0.0.1:8787/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3.0.0", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(traceIDHeader))
}

func TestGetBuildInfo_ViaRouter(t *testing.T) {
	h := newHandlerWithAppInfo(&mockAppInfoService{info: models.BuildInfoResponse{
		Version: "1.0.0",
		Date:    "2026-01-01",
		Commit:  "abc123",
	}})

	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://localhost:8787/api/version/build", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"version":"1.0.0","date":"2026-01-01","commit":"abc123"}`, rec.Body.String())
}
