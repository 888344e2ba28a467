package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value ищет метрику по имени и (необязательно) значению метки
func value(t *testing.T, m *Metrics, name, label, labelValue string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if label != "" {
				matched := false
				for _, lp := range metric.GetLabel() {
					if lp.GetName() == label && lp.GetValue() == labelValue {
						matched = true
					}
				}
				if !matched {
					continue
				}
			}
			if c := metric.GetCounter(); c != nil {
				return c.GetValue()
			}
			if g := metric.GetGauge(); g != nil {
				return g.GetValue()
			}
		}
	}

	t.Fatalf("metric %s{%s=%q} not found", name, label, labelValue)
	return 0
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Drain(DrainCompleted)
	m.Drain(DrainCompleted)
	m.Drain(DrainAuthAborted)
	m.Replay(ReplaySynced)
	m.Replay(ReplayExhausted)
	m.Enqueued()

	assert.Equal(t, 2.0, value(t, m, "finsync_drains_total", "outcome", DrainCompleted))
	assert.Equal(t, 1.0, value(t, m, "finsync_drains_total", "outcome", DrainAuthAborted))
	assert.Equal(t, 1.0, value(t, m, "finsync_replays_total", "result", ReplaySynced))
	assert.Equal(t, 1.0, value(t, m, "finsync_replays_total", "result", ReplayExhausted))
	assert.Equal(t, 1.0, value(t, m, "finsync_enqueued_total", "", ""))
}

func TestMetrics_Gauges(t *testing.T) {
	m := New()

	m.QueueDepth(4, 1)
	m.Online(true)

	assert.Equal(t, 4.0, value(t, m, "finsync_queue_pending", "", ""))
	assert.Equal(t, 1.0, value(t, m, "finsync_queue_failed", "", ""))
	assert.Equal(t, 1.0, value(t, m, "finsync_online", "", ""))

	m.Online(false)
	assert.Equal(t, 0.0, value(t, m, "finsync_online", "", ""))
}

// TestMetrics_NilIsNoop: nil *Metrics допустим везде
func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.Drain(DrainSkipped)
		m.Replay(ReplayRetried)
		m.Enqueued()
		m.QueueDepth(1, 1)
		m.Online(true)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Enqueued()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "finsync_enqueued_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}

// Два экземпляра не конфликтуют при регистрации
func TestMetrics_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.Enqueued()

	assert.Equal(t, 1.0, value(t, a, "finsync_enqueued_total", "", ""))
	assert.Equal(t, 0.0, value(t, b, "finsync_enqueued_total", "", ""))
}
