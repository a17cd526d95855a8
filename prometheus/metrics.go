package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Backend call outcomes
const (
	OutcomeOK             = "ok"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
)

// Metrics groups every series the dashboard exports. All methods are
// safe to call on a nil *Metrics.
type Metrics struct {
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Backend call metrics
	BackendRequestsTotal   *prometheus.CounterVec
	BackendRequestDuration *prometheus.HistogramVec
	FallbackTotal          *prometheus.CounterVec
	BackendAvailable       prometheus.Gauge

	// Sale write metrics
	SaleWritesTotal *prometheus.CounterVec

	// Dashboard metrics
	DashboardReloadsTotal prometheus.Counter
}

// InitMetrics registers the metrics with the default registry
func InitMetrics(prefix string) *Metrics {
	return NewMetrics(prefix, prometheus.DefaultRegisterer)
}

// NewMetrics registers the metrics with reg using prefix for every name
func NewMetrics(prefix string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		BackendRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_backend_requests_total",
				Help: "Total number of calls made to the sales backend",
			},
			[]string{"operation", "outcome"},
		),
		BackendRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_backend_request_duration_seconds",
				Help:    "Duration of calls made to the sales backend in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		FallbackTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_fallback_total",
				Help: "Total number of backend calls answered with mock or simulated data",
			},
			[]string{"operation"},
		),
		BackendAvailable: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: prefix + "_backend_available",
				Help: "Result of the last connectivity probe (1 available, 0 unavailable, -1 unknown)",
			},
		),
		SaleWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_sale_writes_total",
				Help: "Total number of sale writes by result",
			},
			[]string{"operation", "result"},
		),
		DashboardReloadsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_dashboard_reloads_total",
				Help: "Total number of dashboard reloads",
			},
		),
	}
	m.BackendAvailable.Set(-1)
	return m
}

// ObserveHTTPRequest records one served HTTP request
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// TrackBackendCall returns a function that records the duration and outcome of a backend call
func (m *Metrics) TrackBackendCall(operation string) func(outcome string) {
	start := time.Now()
	return func(outcome string) {
		if m == nil {
			return
		}
		m.BackendRequestsTotal.WithLabelValues(operation, outcome).Inc()
		m.BackendRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// RecordFallback increments the fallback counter for operation
func (m *Metrics) RecordFallback(operation string) {
	if m == nil {
		return
	}
	m.FallbackTotal.WithLabelValues(operation).Inc()
}

// SetBackendAvailable publishes the probe result; nil means unknown
func (m *Metrics) SetBackendAvailable(available *bool) {
	if m == nil {
		return
	}
	switch {
	case available == nil:
		m.BackendAvailable.Set(-1)
	case *available:
		m.BackendAvailable.Set(1)
	default:
		m.BackendAvailable.Set(0)
	}
}

// RecordSaleWrite increments the sale write counter
func (m *Metrics) RecordSaleWrite(operation, result string) {
	if m == nil {
		return
	}
	m.SaleWritesTotal.WithLabelValues(operation, result).Inc()
}

// RecordDashboardReload increments the reload counter
func (m *Metrics) RecordDashboardReload() {
	if m == nil {
		return
	}
	m.DashboardReloadsTotal.Inc()
}
