// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MKhiriev/go-finance-sync/internal/config"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/utils"
	"github.com/MKhiriev/go-finance-sync/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestGateway создаёт httpGateway, направленный на тестовый сервер
func newTestGateway(t *testing.T, serverURL string) *httpGateway {
	t.Helper()
	g, err := NewHTTPGateway(config.ClientAdapter{
		HTTPAddress:    serverURL,
		RequestTimeout: 2 * time.Second,
	}, logger.Nop())
	require.NoError(t, err)
	return g.(*httpGateway)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

// ── Send ─────────────────────────────────────────────────────────────────────

func TestSend_CreateUsesPOSTWithBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"name":"Rice"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":42}`))
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	resp, err := g.Send(context.Background(), models.MethodCreate, "/items", json.RawMessage(`{"name":"Rice"}`))

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":42}`, string(resp))
}

func TestSend_UpdateUsesPUT(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/items/42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	resp, err := g.Send(context.Background(), models.MethodUpdate, "/items/42", json.RawMessage(`{"name":"Rice"}`))

	require.NoError(t, err)
	assert.Nil(t, resp)
}

// TestSend_DeleteHasNoBody: DELETE уходит без тела, даже если payload передан.
func TestSend_DeleteHasNoBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	_, err := g.Send(context.Background(), models.MethodDelete, "/items/42", json.RawMessage(`{"x":1}`))

	require.NoError(t, err)
}

func TestSend_AttachesTokenAndTraceID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer opaque-token", r.Header.Get("Authorization"))
		assert.Equal(t, "trace-123", r.Header.Get("X-Trace-ID"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	g.SetToken("  opaque-token ")
	assert.Equal(t, "opaque-token", g.Token())

	ctx := utils.WithTraceID(context.Background(), "trace-123")
	_, err := g.Send(ctx, models.MethodCreate, "/items", json.RawMessage(`{}`))

	require.NoError(t, err)
}

func TestSend_NoTokenNoAuthorizationHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("X-Trace-ID"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	_, err := g.Send(context.Background(), models.MethodCreate, "/items", nil)

	require.NoError(t, err)
}

// TestSend_ExpiredTokenShortCircuits verifies that an expired JWT is rejected
// locally and the server never sees the request.
func TestSend_ExpiredTokenShortCircuits(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	g.SetToken(signedToken(t, time.Now().Add(-time.Minute)))

	_, err := g.Send(context.Background(), models.MethodCreate, "/items", json.RawMessage(`{}`))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, called)
}

func TestSend_ValidJWTIsSent(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	g.SetToken(token)

	_, err := g.Send(context.Background(), models.MethodCreate, "/items", json.RawMessage(`{}`))
	require.NoError(t, err)
}

func TestSend_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"bad request", http.StatusBadRequest, ErrBadRequest},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrForbidden},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"conflict", http.StatusConflict, ErrConflict},
		{"request timeout", http.StatusRequestTimeout, ErrTimeout},
		{"gateway timeout", http.StatusGatewayTimeout, ErrTimeout},
		{"too many requests", http.StatusTooManyRequests, ErrServer},
		{"internal", http.StatusInternalServerError, ErrServer},
		{"bad gateway", http.StatusBadGateway, ErrServer},
		{"unprocessable", http.StatusUnprocessableEntity, ErrRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			}))
			defer srv.Close()

			g := newTestGateway(t, srv.URL)
			_, err := g.Send(context.Background(), models.MethodCreate, "/items", json.RawMessage(`{}`))

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestSend_ServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	g := newTestGateway(t, url)
	_, err := g.Send(context.Background(), models.MethodCreate, "/items", json.RawMessage(`{}`))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.True(t, IsConnectivity(err))
}

func TestSend_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	g, err := NewHTTPGateway(config.ClientAdapter{HTTPAddress: srv.URL, RequestTimeout: 50 * time.Millisecond}, logger.Nop())
	require.NoError(t, err)

	_, err = g.Send(context.Background(), models.MethodCreate, "/items", json.RawMessage(`{}`))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.True(t, IsConnectivity(err))
}

func TestSend_UnsupportedMethod(t *testing.T) {
	g := newTestGateway(t, "http://127.0.0.1:1")

	_, err := g.Send(context.Background(), models.Method("PATCH"), "/items", nil)

	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

// ── constructor ──────────────────────────────────────────────────────────────

func TestNewHTTPGateway_InvalidAddress(t *testing.T) {
	_, err := NewHTTPGateway(config.ClientAdapter{HTTPAddress: "  "}, logger.Nop())
	require.Error(t, err)
}

func TestNewHTTPGateway_InitialToken(t *testing.T) {
	g, err := NewHTTPGateway(config.ClientAdapter{HTTPAddress: "api.example", Token: "tok"}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "tok", g.Token())
	assert.Equal(t, "http://api.example", g.(*httpGateway).client.BaseURL)
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"http://localhost:8080/", "http://localhost:8080", false},
		{"localhost:8080", "http://localhost:8080", false},
		{"https://api.example/v1/", "https://api.example/v1", false},
		{"", "", true},
		{"http://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
