// Package metrics provides Prometheus metrics for the starboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared by callers.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"

	FailureManifest     = "manifest"
	FailureSnapshot     = "snapshot"
	FailureRegistration = "registration"
)

// Manager owns every collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Load cycle metrics
	loadCycles        *prometheus.CounterVec
	loadFailures      *prometheus.CounterVec
	loadCycleDuration prometheus.Histogram
	snapshotFetch     prometheus.Histogram
	members           prometheus.Gauge
	years             prometheus.Gauge
	registrations     prometheus.Gauge
	filterErrors      prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	rateLimited         prometheus.Counter

	// Export metrics
	exports        *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec

	// Downloader metrics
	downloads *prometheus.CounterVec

	// System metrics
	memoryUsage    prometheus.Gauge
	goroutineCount prometheus.Gauge
	gcPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "starboard",
		subsystem:        "leaderboard",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.loadCycles = auto.NewCounterVec(
		m.counterOpts("load_cycles_total", "Load cycles by outcome"),
		[]string{"outcome"},
	)
	m.loadFailures = auto.NewCounterVec(
		m.counterOpts("load_failures_total", "Load failures by kind (manifest, snapshot, registration)"),
		[]string{"kind"},
	)
	m.loadCycleDuration = auto.NewHistogram(
		m.histogramOpts("load_cycle_duration_milliseconds", "Duration of one load cycle in milliseconds"),
	)
	m.snapshotFetch = auto.NewHistogram(
		m.histogramOpts("snapshot_fetch_duration_milliseconds", "Duration of one snapshot fetch and decode in milliseconds"),
	)
	m.members = auto.NewGauge(m.gaugeOpts("members", "Members in the last load cycle"))
	m.years = auto.NewGauge(m.gaugeOpts("years", "Years in the last load cycle"))
	m.registrations = auto.NewGauge(m.gaugeOpts("registrations", "Entries in the last registration index"))
	m.filterErrors = auto.NewCounter(m.counterOpts("filter_validation_errors_total", "Requests whose day filter failed validation"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status code"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.rateLimited = auto.NewCounter(m.counterOpts("rate_limited_total", "Requests rejected by the rate limiter"))

	m.exports = auto.NewCounterVec(
		m.counterOpts("exports_total", "Exports by format and outcome"),
		[]string{"format", "outcome"},
	)
	m.exportDuration = auto.NewHistogramVec(
		m.histogramOpts("export_duration_milliseconds", "Export render duration in milliseconds"),
		[]string{"format"},
	)

	m.downloads = auto.NewCounterVec(
		m.counterOpts("downloads_total", "Snapshot downloads by outcome"),
		[]string{"outcome"},
	)

	m.memoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.goroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Live goroutines"))
	m.gcPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_milliseconds", "Average GC pause in milliseconds"),
	)
}

// RecordLoadCycle counts a finished load cycle and observes its duration.
func (m *Manager) RecordLoadCycle(outcome string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.loadCycles.WithLabelValues(outcome).Inc()
	m.loadCycleDuration.Observe(durationMs)
}

// RecordLoadFailure counts a failure of the given kind.
func (m *Manager) RecordLoadFailure(kind string) {
	if !m.enabled {
		return
	}
	m.loadFailures.WithLabelValues(kind).Inc()
}

// RecordSnapshotFetch observes one snapshot fetch.
func (m *Manager) RecordSnapshotFetch(durationMs float64) {
	if !m.enabled {
		return
	}
	m.snapshotFetch.Observe(durationMs)
}

// UpdateDataset sets the member, year and registration gauges.
func (m *Manager) UpdateDataset(members, years, registrations int) {
	if !m.enabled {
		return
	}
	m.members.Set(float64(members))
	m.years.Set(float64(years))
	m.registrations.Set(float64(registrations))
}

// RecordFilterError counts a request with an invalid day filter.
func (m *Manager) RecordFilterError() {
	if !m.enabled {
		return
	}
	m.filterErrors.Inc()
}

// RecordHTTPRequest counts one request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint counts an error returned by an endpoint.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordRateLimited counts a rejected request.
func (m *Manager) RecordRateLimited() {
	if !m.enabled {
		return
	}
	m.rateLimited.Inc()
}

// RecordExport counts an export and observes its render time.
func (m *Manager) RecordExport(format, outcome string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.exports.WithLabelValues(format, outcome).Inc()
	m.exportDuration.WithLabelValues(format).Observe(durationMs)
}

// RecordDownload counts one downloader request.
func (m *Manager) RecordDownload(outcome string) {
	if !m.enabled {
		return
	}
	m.downloads.WithLabelValues(outcome).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap gauge.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if !m.enabled {
		return
	}
	m.memoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func (m *Manager) UpdateSystemGoroutineCount(n int) {
	if !m.enabled {
		return
	}
	m.goroutineCount.Set(float64(n))
}

// RecordSystemGCPauseTime observes an average GC pause.
func (m *Manager) RecordSystemGCPauseTime(ms float64) {
	if !m.enabled {
		return
	}
	m.gcPauseTime.Observe(ms)
}

// Package-level helpers on the global manager.

// RecordLoadCycle counts a finished load cycle on the global manager.
func RecordLoadCycle(outcome string, durationMs float64) {
	globalManager.RecordLoadCycle(outcome, durationMs)
}

// RecordLoadFailure counts a load failure on the global manager.
func RecordLoadFailure(kind string) { globalManager.RecordLoadFailure(kind) }

// RecordSnapshotFetch observes a snapshot fetch on the global manager.
func RecordSnapshotFetch(durationMs float64) { globalManager.RecordSnapshotFetch(durationMs) }

// UpdateDataset sets the dataset gauges on the global manager.
func UpdateDataset(members, years, registrations int) {
	globalManager.UpdateDataset(members, years, registrations)
}

// RecordFilterError counts an invalid filter on the global manager.
func RecordFilterError() { globalManager.RecordFilterError() }

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByEndpoint counts an endpoint error on the global manager.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// RecordRateLimited counts a rejected request on the global manager.
func RecordRateLimited() { globalManager.RecordRateLimited() }

// RecordExport records an export on the global manager.
func RecordExport(format, outcome string, durationMs float64) {
	globalManager.RecordExport(format, outcome, durationMs)
}

// RecordDownload counts a download on the global manager.
func RecordDownload(outcome string) { globalManager.RecordDownload(outcome) }

// UpdateSystemMemoryUsage sets the heap gauge on the global manager.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }

// UpdateSystemGoroutineCount sets the goroutine gauge on the global manager.
func UpdateSystemGoroutineCount(n int) { globalManager.UpdateSystemGoroutineCount(n) }

// RecordSystemGCPauseTime observes a GC pause on the global manager.
func RecordSystemGCPauseTime(ms float64) { globalManager.RecordSystemGCPauseTime(ms) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
