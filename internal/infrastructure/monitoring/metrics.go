package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// File operation metrics
	FileOps        *prometheus.CounterVec
	FileOpDuration *prometheus.HistogramVec
	ListSkipped    prometheus.Counter

	// Shell metrics
	ShellState     prometheus.Gauge
	ShellSpawns    *prometheus.CounterVec
	ShellChunks    *prometheus.CounterVec
	ShellBytes     *prometheus.CounterVec
	ShellListeners *prometheus.GaugeVec
	ShellInputs    *prometheus.CounterVec

	// Channel metrics
	Surfaces   prometheus.Gauge
	Messages   *prometheus.CounterVec
	startTime  time.Time
	uptimeFunc prometheus.GaugeFunc
}

// NewMetrics creates a metrics collector backed by its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	f := promauto.With(reg)
	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		FileOps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_file_operations_total",
				Help: "Total number of file operations",
			},
			[]string{"op", "status"},
		),
		FileOpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_file_operation_duration_seconds",
				Help:    "File operation duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"op"},
		),
		ListSkipped: f.NewCounter(
			prometheus.CounterOpts{
				Name: "bridge_list_entries_skipped_total",
				Help: "Directory entries omitted from listings because stat failed",
			},
		),

		ShellState: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_shell_state",
				Help: "Shell session state (0=unstarted, 1=running, 2=terminated)",
			},
		),
		ShellSpawns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_shell_spawns_total",
				Help: "Shell spawn attempts",
			},
			[]string{"status"},
		),
		ShellChunks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_shell_chunks_total",
				Help: "Output chunks read from the shell",
			},
			[]string{"stream"},
		),
		ShellBytes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_shell_bytes_total",
				Help: "Output bytes read from the shell",
			},
			[]string{"stream"},
		),
		ShellListeners: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bridge_shell_listeners",
				Help: "Registered shell event listeners",
			},
			[]string{"kind"},
		),
		ShellInputs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_shell_inputs_total",
				Help: "Input lines submitted to the shell",
			},
			[]string{"status"},
		),

		Surfaces: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_surfaces_connected",
				Help: "Number of attached front-end surfaces",
			},
		),
		Messages: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_messages_total",
				Help: "Channel messages by direction and channel",
			},
			[]string{"direction", "channel"},
		),
	}

	m.uptimeFunc = f.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "bridge_uptime_seconds",
			Help: "Host uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry exposes the underlying registry for gathering in tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordFileOp records one file operation
func (m *Metrics) RecordFileOp(op, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.FileOps.WithLabelValues(op, status).Inc()
	m.FileOpDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// IncListSkipped counts an entry dropped from a listing
func (m *Metrics) IncListSkipped() {
	if m == nil {
		return
	}
	m.ListSkipped.Inc()
}

// SetShellState records the numeric shell state
func (m *Metrics) SetShellState(v int) {
	if m == nil {
		return
	}
	m.ShellState.Set(float64(v))
}

// RecordSpawn records a spawn attempt
func (m *Metrics) RecordSpawn(status string) {
	if m == nil {
		return
	}
	m.ShellSpawns.WithLabelValues(status).Inc()
}

// RecordChunk records one chunk read from a shell stream
func (m *Metrics) RecordChunk(stream string, size int) {
	if m == nil {
		return
	}
	m.ShellChunks.WithLabelValues(stream).Inc()
	m.ShellBytes.WithLabelValues(stream).Add(float64(size))
}

// SetListeners records the listener count for one event kind
func (m *Metrics) SetListeners(kind string, count int) {
	if m == nil {
		return
	}
	m.ShellListeners.WithLabelValues(kind).Set(float64(count))
}

// RecordInput records a submitted input line
func (m *Metrics) RecordInput(status string) {
	if m == nil {
		return
	}
	m.ShellInputs.WithLabelValues(status).Inc()
}

// IncSurfaces increments attached surfaces
func (m *Metrics) IncSurfaces() {
	if m == nil {
		return
	}
	m.Surfaces.Inc()
}

// DecSurfaces decrements attached surfaces
func (m *Metrics) DecSurfaces() {
	if m == nil {
		return
	}
	m.Surfaces.Dec()
}

// RecordMessage records a channel message
func (m *Metrics) RecordMessage(direction, channel string) {
	if m == nil {
		return
	}
	m.Messages.WithLabelValues(direction, channel).Inc()
}
