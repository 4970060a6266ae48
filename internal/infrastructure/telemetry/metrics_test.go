package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest("/api/dashboard/{id}", 200, 120*time.Millisecond)
	m.ObserveRequest("/api/dashboard/{id}", 200, 80*time.Millisecond)
	m.ObserveRequest("/health", 0, time.Second)
	m.LoadCommitted("full_load")
	m.LoadDiscarded("full_load")
	m.LoadDiscarded("full_load")
	m.LoadFailed("seed", "LOAD_ERROR")
	m.IntentMatched("open-advisor")
	m.VoiceSessionEnded("transcript")
	m.Navigated("cfo")
	m.AuthTransition("authenticated")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("/api/dashboard/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("/health", "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loadsCommitted.WithLabelValues("full_load")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.loadsDiscarded.WithLabelValues("full_load")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loadFailures.WithLabelValues("seed", "LOAD_ERROR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.intents.WithLabelValues("open-advisor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.voiceSessions.WithLabelValues("transcript")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.navigations.WithLabelValues("cfo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authTransitions.WithLabelValues("authenticated")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.apiDuration))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.IntentMatched("sync")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `poa_commands_intents_total{intent="sync"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
