package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockpulse"

// ApplicationMetrics holds all application-specific metrics
type ApplicationMetrics struct {
	HTTPRequests    metrics.Counter
	HTTPDuration    metrics.Histogram
	Fetches         metrics.Counter
	FetchDuration   metrics.Histogram
	Submissions     metrics.Counter
	JournalWrites   metrics.Counter
	HealthChecks    metrics.Counter
	ComponentHealth metrics.Gauge
	Errors          metrics.Counter
}

// NewApplicationMetrics registers the collectors on reg. Tests pass a fresh
// prometheus.NewRegistry so repeated construction doesn't collide.
func NewApplicationMetrics(reg prometheus.Registerer) *ApplicationMetrics {
	counter := func(name, help string, labels ...string) metrics.Counter {
		cv := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: name, Help: help,
		}, labels)
		reg.MustRegister(cv)
		return kitprometheus.NewCounter(cv)
	}
	histogram := func(name, help string, labels ...string) metrics.Histogram {
		hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: name, Help: help,
			Buckets: prometheus.DefBuckets,
		}, labels)
		reg.MustRegister(hv)
		return kitprometheus.NewHistogram(hv)
	}
	gv := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Name: "component_health",
		Help: "1 when the component reported healthy on the last check.",
	}, []string{"component"})
	reg.MustRegister(gv)

	return &ApplicationMetrics{
		HTTPRequests:    counter("http_requests_total", "HTTP requests served.", "method", "path", "status"),
		HTTPDuration:    histogram("http_request_duration_seconds", "HTTP request latency.", "method", "path", "status"),
		Fetches:         counter("feed_fetches_total", "Price series downloads.", "provider", "outcome"),
		FetchDuration:   histogram("feed_fetch_duration_seconds", "Price series download latency.", "provider", "outcome"),
		Submissions:     counter("submissions_total", "Dashboard submissions.", "state"),
		JournalWrites:   counter("journal_writes_total", "Submission journal writes.", "success"),
		HealthChecks:    counter("health_checks_total", "Component health checks.", "component", "healthy"),
		ComponentHealth: kitprometheus.NewGauge(gv),
		Errors:          counter("errors_total", "Errors by code and component.", "code", "component"),
	}
}

// NewDiscardMetrics returns metrics that record nothing.
func NewDiscardMetrics() *ApplicationMetrics {
	return &ApplicationMetrics{
		HTTPRequests:    discard.NewCounter(),
		HTTPDuration:    discard.NewHistogram(),
		Fetches:         discard.NewCounter(),
		FetchDuration:   discard.NewHistogram(),
		Submissions:     discard.NewCounter(),
		JournalWrites:   discard.NewCounter(),
		HealthChecks:    discard.NewCounter(),
		ComponentHealth: discard.NewGauge(),
		Errors:          discard.NewCounter(),
	}
}

// Handler exposes the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// HTTP Metrics
func (am *ApplicationMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	lvs := []string{"method", method, "path", path, "status", strconv.Itoa(statusCode)}
	am.HTTPRequests.With(lvs...).Add(1)
	am.HTTPDuration.With(lvs...).Observe(duration.Seconds())
}

// RecordSubmission counts submits by resulting state: idle, ok, empty, failed.
func (am *ApplicationMetrics) RecordSubmission(state string) {
	am.Submissions.With("state", state).Add(1)
}

func (am *ApplicationMetrics) RecordJournalWrite(success bool) {
	am.JournalWrites.With("success", strconv.FormatBool(success)).Add(1)
}

// Error Metrics
func (am *ApplicationMetrics) RecordError(code, component string) {
	am.Errors.With("code", code, "component", component).Add(1)
}

// RecordHealthCheck records a health check result
func (am *ApplicationMetrics) RecordHealthCheck(component string, healthy bool) {
	am.HealthChecks.With("component", component, "healthy", strconv.FormatBool(healthy)).Add(1)
	var value float64
	if healthy {
		value = 1
	}
	am.ComponentHealth.With("component", component).Set(value)
}

// MetricsMiddleware creates HTTP middleware for collecting metrics. Paths
// outside known routes are folded into "other" to bound label cardinality.
func MetricsMiddleware(am *ApplicationMetrics, routes ...string) func(http.Handler) http.Handler {
	known := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		known[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapper := &responseWriterWrapper{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			next.ServeHTTP(wrapper, r)

			path := r.URL.Path
			if _, ok := known[path]; !ok && len(known) > 0 {
				path = "other"
			}
			am.RecordHTTPRequest(r.Method, path, wrapper.statusCode, time.Since(start))
		})
	}
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriterWrapper) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}
