package tsapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the REST API, including counters
// that observe the codec's own error-latch behavior from outside the
// process rather than just HTTP-level success/failure. Each Metrics owns
// its own Registry rather than registering into the global default one, so
// a process (or a test binary) can construct more than one server without
// colliding on duplicate metric names.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	authRequestsTotal *prometheus.CounterVec

	recordsEncodedTotal prometheus.Counter
	recordsDecodedTotal prometheus.Counter
	subStreamDepth      prometheus.Histogram
	badStreamTripsTotal prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics into a fresh
// Registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokenstream_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tokenstream_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tokenstream_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),
		authRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokenstream_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),
		recordsEncodedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tokenstream_records_encoded_total",
				Help: "Total number of records encoded to TokenStream bytes",
			},
		),
		recordsDecodedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tokenstream_records_decoded_total",
				Help: "Total number of records decoded from TokenStream bytes",
			},
		),
		subStreamDepth: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tokenstream_substream_depth",
				Help:    "Nested sub-stream depth of records crossing the API boundary",
				Buckets: prometheus.LinearBuckets(0, 1, 6),
			},
		),
		badStreamTripsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tokenstream_bad_stream_trips_total",
				Help: "Total number of times a Reader or Writer's error latch tripped while serving a request",
			},
		),
	}
}

// Registry returns the Registry this Metrics instance registered into, for
// wiring a promhttp.HandlerFor endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)
	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordAuthRequest records an authentication request.
func (m *Metrics) RecordAuthRequest(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.authRequestsTotal.WithLabelValues(status).Inc()
}

// RecordEncode observes a record being encoded to TokenStream bytes and the
// sub-stream nesting depth of its schema.
func (m *Metrics) RecordEncode(depth int) {
	m.recordsEncodedTotal.Inc()
	m.subStreamDepth.Observe(float64(depth))
}

// RecordDecode observes a record being decoded from TokenStream bytes and
// the sub-stream nesting depth of its schema.
func (m *Metrics) RecordDecode(depth int) {
	m.recordsDecodedTotal.Inc()
	m.subStreamDepth.Observe(float64(depth))
}

// RecordBadStreamTrip observes a Reader or Writer's error latch tripping
// while serving a request.
func (m *Metrics) RecordBadStreamTrip() {
	m.badStreamTripsTotal.Inc()
}

// InstrumentHandler instruments an HTTP handler with request metrics.
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// InstrumentAuthMiddleware instruments the authentication middleware.
func (m *Metrics) InstrumentAuthMiddleware(next func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			hasAPIKey := apiKey != ""

			next(h).ServeHTTP(w, r)

			if rw, ok := w.(*responseWriter); ok && hasAPIKey {
				m.RecordAuthRequest(rw.statusCode != http.StatusUnauthorized)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
// written by the wrapped handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
