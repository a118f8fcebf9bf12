package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Computation metrics
	ComputeTotal    *prometheus.CounterVec
	ComputeDuration *prometheus.HistogramVec
	ComputeErrors   *prometheus.CounterVec

	// DatasetSize tracks the size of datasets submitted for analysis
	DatasetSize prometheus.Histogram

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for the JSON health endpoint
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds aggregate values for the JSON health endpoint
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	TotalDuration float64 `json:"-"`
	RequestCount  int64   `json:"-"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statsapi_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statsapi_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		RequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statsapi_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statsapi_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Computation metrics
		ComputeTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statsapi_compute_total",
				Help: "Total number of calculations performed",
			},
			[]string{"engine", "calc", "status"},
		),
		ComputeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statsapi_compute_duration_seconds",
				Help:    "Calculation duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"engine", "calc"},
		),
		ComputeErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statsapi_compute_errors_total",
				Help: "Total number of calculation errors",
			},
			[]string{"engine", "calc", "kind"},
		),

		DatasetSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "statsapi_dataset_size",
				Help:    "Number of observations in submitted datasets",
				Buckets: []float64{10, 100, 1000, 10000, 100000},
			},
		),

		// System metrics
		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "statsapi_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordCompute records a completed calculation
func (m *Metrics) RecordCompute(engine, calc, status string, duration time.Duration) {
	m.ComputeTotal.WithLabelValues(engine, calc, status).Inc()
	m.ComputeDuration.WithLabelValues(engine, calc).Observe(duration.Seconds())
}

// RecordComputeError records a failed calculation by error kind
func (m *Metrics) RecordComputeError(engine, calc, kind string) {
	m.ComputeErrors.WithLabelValues(engine, calc, kind).Inc()
}

// ObserveDatasetSize records the size of a submitted dataset
func (m *Metrics) ObserveDatasetSize(n int) {
	m.DatasetSize.Observe(float64(n))
}

// GetSnapshot returns aggregate request statistics for the health endpoint
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.RequestCount > 0 {
		s.AvgDurationMS = s.TotalDuration / float64(s.RequestCount) * 1000
	}
	return s
}

// UptimeSeconds returns seconds since the collector was created
func (m *Metrics) UptimeSeconds() float64 {
	return time.Since(m.startTime).Seconds()
}
