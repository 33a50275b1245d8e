package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Calculation results tracked by Metrics.
const (
	resultSuccess  = "success"
	resultRejected = "rejected"
	resultError    = "error"
	resultLimited  = "rate_limited"
)

// Metrics holds the Prometheus collectors of one server instance. Each
// instance owns its registry so that several servers (or tests) can coexist
// in one process.
type Metrics struct {
	registry       *prometheus.Registry
	handler        http.Handler
	activeRequests prometheus.Gauge
	requestsTotal  prometheus.Counter
	calculations   *prometheus.CounterVec
	duration       prometheus.Histogram
}

// NewMetrics creates the collectors, including the Go runtime and process
// collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lcmform_active_requests",
			Help: "Number of HTTP requests currently being served.",
		}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lcmform_requests_total",
			Help: "Total number of HTTP requests served.",
		}),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lcmform_calculations_total",
			Help: "Calculation requests by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lcmform_calculation_duration_seconds",
			Help:    "Time spent computing the interval LCM.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 10, 7),
		}),
	}
	m.registry.MustRegister(
		m.activeRequests,
		m.requestsTotal,
		m.calculations,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, r := range []string{resultSuccess, resultRejected, resultError, resultLimited} {
		m.calculations.WithLabelValues(r)
	}
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// IncrementActiveRequests marks the start of a request.
func (m *Metrics) IncrementActiveRequests() {
	m.activeRequests.Inc()
	m.requestsTotal.Inc()
}

// DecrementActiveRequests marks the end of a request.
func (m *Metrics) DecrementActiveRequests() {
	m.activeRequests.Dec()
}

// ObserveCalculation counts one calculation request. elapsed is recorded only
// for successful calculations.
func (m *Metrics) ObserveCalculation(result string, elapsed time.Duration) {
	m.calculations.WithLabelValues(result).Inc()
	if result == resultSuccess {
		m.duration.Observe(elapsed.Seconds())
	}
}

// WritePrometheus serves the registry in the Prometheus exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// metricsMiddleware tracks in-flight and total requests.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()
		next(w, r)
	}
}

// handleMetrics serves /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "Use GET")
		return
	}
	s.metrics.WritePrometheus(w, r)
}
