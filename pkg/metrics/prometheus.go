// Package metrics provides Prometheus metrics for the bounty board service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager owns every Prometheus metric the service records.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	// Pipeline metrics - screenshot processing quality
	linesParsed          prometheus.Counter
	linesUnparseable     prometheus.Counter
	namesResolved        prometheus.Counter
	namesProvisional     prometheus.Counter
	lowConfidenceResolve prometheus.Counter

	// Merge metrics
	mergeFallbacks prometheus.Counter
	mergeConflicts prometheus.Counter

	// Race and ledger metrics
	racesFinalized   prometheus.Counter
	ledgerApplies    prometheus.Counter
	ledgerErrors     prometheus.Counter
	boardPlayers     prometheus.Gauge
	registryPlayers  prometheus.Gauge
	openRaceSessions prometheus.Gauge

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a metrics manager with configuration options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: defaultNamespace,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: m.namespace, Name: name, Help: help})
		m.registry.MustRegister(c)
		return c
	}
	gauge := func(name, help string) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: m.namespace, Name: name, Help: help})
		m.registry.MustRegister(g)
		return g
	}

	m.linesParsed = counter("ocr_lines_parsed_total", "OCR lines that yielded a (rank, name) pair.")
	m.linesUnparseable = counter("ocr_lines_unparseable_total", "OCR lines surfaced for manual review.")
	m.namesResolved = counter("names_resolved_total", "Raw names resolved to a known identity.")
	m.namesProvisional = counter("names_provisional_total", "Raw names provisionally registered as new identities.")
	m.lowConfidenceResolve = counter("names_low_confidence_total", "Resolutions below full confidence.")
	m.mergeFallbacks = counter("merge_fallbacks_total", "Zero-overlap merges that fell back to concatenation.")
	m.mergeConflicts = counter("merge_conflicts_total", "Finalize calls rejected with duplicate identities.")
	m.racesFinalized = counter("races_finalized_total", "Races merged, scored and applied.")
	m.ledgerApplies = counter("ledger_applies_total", "Successful atomic delta batch applies.")
	m.ledgerErrors = counter("ledger_errors_total", "Failed ledger operations.")
	m.boardPlayers = gauge("board_players", "Players currently on the bounty board.")
	m.registryPlayers = gauge("registry_players", "Known identities in the player registry.")
	m.openRaceSessions = gauge("open_race_sessions", "Race sessions accumulating screenshots.")

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"endpoint", "method"})
	m.registry.MustRegister(m.httpRequests, m.httpRequestDuration)
}

// Global metrics manager instance.
var globalManager = NewManager() //nolint:gochecknoglobals // singleton metrics manager

// Package-level helpers recording against the global manager.

func RecordLineParsed()      { globalManager.linesParsed.Inc() }
func RecordLineUnparseable() { globalManager.linesUnparseable.Inc() }
func RecordNameResolved()    { globalManager.namesResolved.Inc() }
func RecordNameProvisional() { globalManager.namesProvisional.Inc() }
func RecordLowConfidence()   { globalManager.lowConfidenceResolve.Inc() }
func RecordMergeFallback()   { globalManager.mergeFallbacks.Inc() }
func RecordMergeConflict()   { globalManager.mergeConflicts.Inc() }
func RecordRaceFinalized()   { globalManager.racesFinalized.Inc() }
func RecordLedgerApply()     { globalManager.ledgerApplies.Inc() }
func RecordLedgerError()     { globalManager.ledgerErrors.Inc() }

func UpdateBoardPlayers(n int)     { globalManager.boardPlayers.Set(float64(n)) }
func UpdateRegistryPlayers(n int)  { globalManager.registryPlayers.Set(float64(n)) }
func UpdateOpenRaceSessions(n int) { globalManager.openRaceSessions.Set(float64(n)) }

// RecordHTTPRequest counts one request by endpoint, method and status.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one request's latency in milliseconds.
func RecordHTTPRequestDuration(endpoint, method string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(durationMs)
}

// Registry exposes this manager's registry for promhttp handlers.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// GetRegistry exposes the global manager's registry.
func GetRegistry() *prometheus.Registry {
	return globalManager.Registry()
}
