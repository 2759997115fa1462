// Package metrics provides Prometheus metrics for the Rentura lease check service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace       = "rentura"
	subsystem              = "leasecheck"
	defaultRefreshInterval = 10 * time.Second
)

// Outcome labels for RecordAnalysis.
const (
	OutcomeFindings = "findings"
	OutcomeEmpty    = "empty"
	OutcomeFailed   = "failed"
)

// Manager manages all Prometheus metrics for the Rentura service.
type Manager struct {
	namespace       string
	enabled         bool
	refreshInterval time.Duration
	customLabels    map[string]string
	registry        prometheus.Registerer

	// Core Business Metrics - what the extraction pipeline produced
	analyses             *prometheus.CounterVec
	findingsEmitted      prometheus.Counter
	findingsDiscarded    prometheus.Counter
	unpairedLines        prometheus.Counter
	scoresOutOfRange     prometheus.Counter
	findingsPerAnalysis  prometheus.Histogram
	findingsByIntensity  *prometheus.CounterVec
	extractionLatency    prometheus.Histogram
	summaryLength        prometheus.Histogram
	uploadSize           prometheus.Histogram
	rejectedUploads      *prometheus.CounterVec
	emptySummaryAnalyses prometheus.Counter

	// Upstream Metrics - the analysis service we forward documents to
	upstreamLatency  prometheus.Histogram
	upstreamErrors   *prometheus.CounterVec
	upstreamInFlight prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager with one built from opts on a fresh
// private registry. Call it before handlers capture GetRegistry.
func Init(opts ...Option) *Manager {
	registry := prometheus.NewRegistry()
	m := NewManager(append([]Option{WithPrometheusRegistry(registry)}, opts...)...)
	customRegistry, globalManager = registry, m
	return m
}

// Global returns the manager used by the package-level helpers.
func Global() *Manager { return globalManager }

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       defaultNamespace,
		enabled:         true,
		refreshInterval: defaultRefreshInterval,
		customLabels:    make(map[string]string),
		registry:        prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often gauges fed by background updaters refresh.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics
	m.analyses = auto.NewCounterVec(
		m.counterOpts("analyses_total", "Total number of analyses by outcome (findings, empty, failed)"),
		[]string{"source", "outcome"},
	)
	m.findingsEmitted = auto.NewCounter(m.counterOpts("findings_emitted_total",
		"Total number of clause findings shown to users"))
	m.findingsDiscarded = auto.NewCounter(m.counterOpts("findings_discarded_total",
		"Total number of paired clauses dropped because their score was 5 or lower"))
	m.unpairedLines = auto.NewCounter(m.counterOpts("unpaired_lines_total",
		"Total number of summary lines without a following probability declaration"))
	m.scoresOutOfRange = auto.NewCounter(m.counterOpts("scores_out_of_range_total",
		"Total number of parsed scores above 10 (clamped, pending product clarification)"))
	m.findingsPerAnalysis = auto.NewHistogram(m.histogramOpts("findings_per_analysis",
		"Number of findings emitted per analysis", []float64{0, 1, 2, 3, 4, 5, 6, 8, 10, 15, 20}))
	m.findingsByIntensity = auto.NewCounterVec(
		m.counterOpts("findings_by_intensity_total", "Total number of findings by indicator intensity"),
		[]string{"intensity"},
	)
	m.extractionLatency = auto.NewHistogram(m.histogramOpts("extraction_latency_milliseconds",
		"Time spent extracting and presenting findings in milliseconds", prometheus.DefBuckets))
	m.summaryLength = auto.NewHistogram(m.histogramOpts("summary_length_bytes",
		"Size of the summaries received from the analysis service",
		prometheus.ExponentialBuckets(64, 2, 12)))
	m.uploadSize = auto.NewHistogram(m.histogramOpts("upload_size_bytes",
		"Size of uploaded lease documents", prometheus.ExponentialBuckets(16*1024, 2, 12)))
	m.rejectedUploads = auto.NewCounterVec(
		m.counterOpts("rejected_uploads_total", "Total number of uploads rejected before analysis"),
		[]string{"reason"},
	)
	m.emptySummaryAnalyses = auto.NewCounter(m.counterOpts("empty_summary_total",
		"Total number of analyses whose summary was missing, malformed or blank"))

	// Upstream Metrics
	m.upstreamLatency = auto.NewHistogram(m.histogramOpts("upstream_latency_milliseconds",
		"Latency of the analysis service in milliseconds",
		[]float64{250, 500, 1000, 2500, 5000, 10000, 20000, 40000, 80000, 160000, 300000}))
	m.upstreamErrors = auto.NewCounterVec(
		m.counterOpts("upstream_errors_total", "Total number of failed analysis service calls by type"),
		[]string{"error_type"},
	)
	m.upstreamInFlight = auto.NewGauge(m.gaugeOpts("upstream_in_flight",
		"Number of analysis service calls currently in flight"))

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds (user experience)", prometheus.DefBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	// Enhanced Error Metrics - Detailed error tracking
	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", prometheus.DefBuckets),
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// Analysis Metrics Functions.

// RecordAnalysis counts one finished analysis. source is "upload" or "summary".
func RecordAnalysis(source, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.analyses.WithLabelValues(source, outcome).Inc()
}

// RecordExtraction records the counters of one extraction run.
func RecordExtraction(emitted, discarded, unpaired, outOfRange int) {
	if !globalManager.enabled {
		return
	}
	globalManager.findingsEmitted.Add(float64(emitted))
	globalManager.findingsDiscarded.Add(float64(discarded))
	globalManager.unpairedLines.Add(float64(unpaired))
	globalManager.scoresOutOfRange.Add(float64(outOfRange))
	globalManager.findingsPerAnalysis.Observe(float64(emitted))
}

// RecordFindingIntensity counts one emitted finding at the given intensity.
func RecordFindingIntensity(intensity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.findingsByIntensity.WithLabelValues(intensity).Inc()
}

// RecordExtractionLatency records extraction latency in milliseconds.
func RecordExtractionLatency(latencyMs float64) {
	globalManager.extractionLatency.Observe(latencyMs)
}

// RecordSummaryLength records the byte length of a summary.
func RecordSummaryLength(n int) {
	globalManager.summaryLength.Observe(float64(n))
}

// RecordEmptySummary counts an analysis whose summary was unusable.
func RecordEmptySummary() {
	globalManager.emptySummaryAnalyses.Inc()
}

// RecordUploadSize records the size of an uploaded document.
func RecordUploadSize(bytes int64) {
	globalManager.uploadSize.Observe(float64(bytes))
}

// RecordRejectedUpload counts an upload refused before analysis.
func RecordRejectedUpload(reason string) {
	globalManager.rejectedUploads.WithLabelValues(reason).Inc()
}

// Upstream Metrics Functions.

// RecordUpstreamLatency records analysis service latency in milliseconds.
func RecordUpstreamLatency(latencyMs float64) {
	globalManager.upstreamLatency.Observe(latencyMs)
}

// RecordUpstreamError counts a failed analysis service call.
func RecordUpstreamError(errorType string) {
	globalManager.upstreamErrors.WithLabelValues(errorType).Inc()
}

// IncUpstreamInFlight marks an analysis service call as started.
func IncUpstreamInFlight() { globalManager.upstreamInFlight.Inc() }

// DecUpstreamInFlight marks an analysis service call as finished.
func DecUpstreamInFlight() { globalManager.upstreamInFlight.Dec() }

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error by component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records latency of operations that resulted in errors.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry for serving metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
