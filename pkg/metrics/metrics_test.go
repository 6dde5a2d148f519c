package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplicationMetricsRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewApplicationMetrics(reg)
	require.NotNil(t, m)

	assert.Panics(t, func() { NewApplicationMetrics(reg) }, "duplicate registration")
	assert.NotPanics(t, func() { NewApplicationMetrics(prometheus.NewRegistry()) })
}

func TestRecorders(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewApplicationMetrics(reg)

	m.RecordSubmission("ok")
	m.RecordSubmission("ok")
	m.RecordSubmission("idle")
	m.RecordJournalWrite(false)
	m.RecordError("PROVIDER_ERROR", "service")
	m.RecordHealthCheck("journal", false)
	m.RecordHealthCheck("feed", true)
	m.RecordHTTPRequest(http.MethodGet, "/api/submit", 200, 15*time.Millisecond)

	expected := `
# HELP stockpulse_submissions_total Dashboard submissions.
# TYPE stockpulse_submissions_total counter
stockpulse_submissions_total{state="idle"} 1
stockpulse_submissions_total{state="ok"} 2
# HELP stockpulse_component_health 1 when the component reported healthy on the last check.
# TYPE stockpulse_component_health gauge
stockpulse_component_health{component="feed"} 1
stockpulse_component_health{component="journal"} 0
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"stockpulse_submissions_total", "stockpulse_component_health"))

	n, err := testutil.GatherAndCount(reg, "stockpulse_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDiscardMetrics(t *testing.T) {
	m := NewDiscardMetrics()
	assert.NotPanics(t, func() {
		m.RecordSubmission("ok")
		m.RecordHealthCheck("feed", true)
		m.RecordHTTPRequest(http.MethodGet, "/", 200, time.Millisecond)
	})
}

func TestMetricsMiddlewareFoldsUnknownPaths(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewApplicationMetrics(reg)
	h := MetricsMiddleware(m, "/api/submit")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/submit" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	for _, p := range []string{"/api/submit", "/wp-admin", "/random/123"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	expected := `
# HELP stockpulse_http_requests_total HTTP requests served.
# TYPE stockpulse_http_requests_total counter
stockpulse_http_requests_total{method="GET",path="/api/submit",status="200"} 1
stockpulse_http_requests_total{method="GET",path="other",status="404"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "stockpulse_http_requests_total"))
}

func TestHandlerServesExposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewApplicationMetrics(reg).RecordSubmission("empty")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `stockpulse_submissions_total{state="empty"} 1`)
}
