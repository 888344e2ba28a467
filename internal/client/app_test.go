package client

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-finance-sync/internal/config"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// remoteAPI — фейковый удалённый API, запоминающий входящие запросы
type remoteAPI struct {
	mu       sync.Mutex
	requests []string
	traceIDs []string
}

func (r *remoteAPI) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	r.requests = append(r.requests, req.Method+" "+req.URL.RequestURI()+" "+string(body))
	r.traceIDs = append(r.traceIDs, req.Header.Get("X-Trace-ID"))
	r.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// logBuffer собирает вывод логгера из нескольких горутин
type logBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (r *remoteAPI) all() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.requests...), append([]string(nil), r.traceIDs...)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())
	return addr
}

func newTestConfig(t *testing.T, apiURL string) *config.ClientConfig {
	t.Helper()
	u, err := url.Parse(apiURL)
	require.NoError(t, err)

	return &config.ClientConfig{
		Adapter: config.ClientAdapter{HTTPAddress: apiURL, RequestTimeout: 2 * time.Second},
		Storage: config.ClientStorage{DB: config.ClientDB{DSN: filepath.Join(t.TempDir(), "queue.db")}},
		Workers: config.ClientWorkers{SyncInterval: time.Hour},
		Sync: config.ClientSync{
			GraceDelay:    time.Hour,
			MaxRetries:    3,
			ProbeAddress:  u.Host,
			ProbeInterval: time.Hour,
		},
		Server: config.ClientServer{HTTPAddress: freeAddr(t)},
	}
}

// startApp запускает агента и возвращает функцию остановки
func startApp(t *testing.T, cfg *config.ClientConfig) (*App, func() error) {
	t.Helper()
	return startAppWithLogger(t, cfg, logger.Nop())
}

func startAppWithLogger(t *testing.T, cfg *config.ClientConfig, log *logger.Logger) (*App, func() error) {
	t.Helper()

	a, err := NewApp(cfg, models.NewAppBuildInfo("1.0.0", "", ""), log)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.Server.HTTPAddress + "/api/version")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	return a, func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(15 * time.Second):
			t.Fatal("agent did not stop")
			return nil
		}
	}
}

func TestApp_WriteGoesStraightToRemoteWhenOnline(t *testing.T) {
	api := &remoteAPI{}
	remote := httptest.NewServer(api)
	defer remote.Close()

	cfg := newTestConfig(t, remote.URL)
	_, stop := startApp(t, cfg)

	req, err := http.NewRequest(http.MethodPost, "http://"+cfg.Server.HTTPAddress+"/api/records/transactions", strings.NewReader(`{"amount":12}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Trace-ID", "shell-trace")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	requests, traceIDs := api.all()
	require.Len(t, requests, 1)
	assert.Equal(t, `POST /transactions {"amount":12}`, requests[0])
	assert.Equal(t, "shell-trace", traceIDs[0])

	require.NoError(t, stop())
}

func TestApp_QueuesOfflineAndReplaysAfterRestart(t *testing.T) {
	api := &remoteAPI{}
	remote := httptest.NewServer(api)
	defer remote.Close()

	// первый запуск: зонд смотрит на закрытый порт, агент офлайн
	cfg := newTestConfig(t, remote.URL)
	cfg.Sync.ProbeAddress = freeAddr(t)
	_, stop := startApp(t, cfg)

	resp, err := http.Post("http://"+cfg.Server.HTTPAddress+"/api/records/transactions", "application/json", strings.NewReader(`{"amount":7}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.NoError(t, stop())

	requests, _ := api.all()
	assert.Empty(t, requests)

	// второй запуск над той же очередью: агент онлайн и воспроизводит запись
	u, err := url.Parse(remote.URL)
	require.NoError(t, err)
	cfg.Sync.ProbeAddress = u.Host
	cfg.Server.HTTPAddress = freeAddr(t)
	_, stop = startApp(t, cfg)
	defer func() { require.NoError(t, stop()) }()

	assert.Eventually(t, func() bool {
		requests, _ := api.all()
		return len(requests) == 1 && requests[0] == `POST /transactions {"amount":7}`
	}, 5*time.Second, 20*time.Millisecond)
}

func TestApp_StopClosesStorages(t *testing.T) {
	remote := httptest.NewServer(&remoteAPI{})
	defer remote.Close()

	a, stop := startApp(t, newTestConfig(t, remote.URL))
	require.NoError(t, stop())

	_, err := a.services.SyncEngine.ListOperations(context.Background())
	assert.Error(t, err)
}

// Таймеры удаления SYNCED не срабатывают по уже закрытой очереди
func TestApp_StopLeavesNoGraceTimersBehind(t *testing.T) {
	api := &remoteAPI{}
	remote := httptest.NewServer(api)
	defer remote.Close()

	cfg := newTestConfig(t, remote.URL)
	cfg.Sync.ProbeAddress = freeAddr(t)
	_, stop := startApp(t, cfg)

	resp, err := http.Post("http://"+cfg.Server.HTTPAddress+"/api/records/transactions", "application/json", strings.NewReader(`{"amount":3}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.NoError(t, stop())

	// второй запуск онлайн с короткой задержкой удаления
	u, err := url.Parse(remote.URL)
	require.NoError(t, err)
	cfg.Sync.ProbeAddress = u.Host
	cfg.Sync.GraceDelay = 50 * time.Millisecond
	cfg.Server.HTTPAddress = freeAddr(t)

	out := &logBuffer{}
	_, stop = startAppWithLogger(t, cfg, &logger.Logger{Logger: zerolog.New(out)})

	require.Eventually(t, func() bool {
		requests, _ := api.all()
		return len(requests) == 1
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, stop())

	time.Sleep(150 * time.Millisecond)
	assert.NotContains(t, out.String(), "failed to delete synced operation")
}

func TestNewApp_InvalidStorage(t *testing.T) {
	// родительский "каталог" — обычный файл, база не может быть создана
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	cfg := newTestConfig(t, "http://127.0.0.1:1")
	cfg.Storage.DB.DSN = filepath.Join(blocker, "queue.db")

	a, err := NewApp(cfg, models.NewAppBuildInfo("1.0.0", "", ""), logger.Nop())

	assert.Error(t, err)
	assert.Nil(t, a)
}
