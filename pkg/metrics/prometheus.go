// Package metrics provides Prometheus metrics for the reconciliation
// scoring engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Scoring throughput
	pairsScored  prometheus.Counter
	pairsSkipped prometheus.Counter

	// Ranking
	rankRequests       prometheus.Counter
	rankDuration       prometheus.Histogram
	candidatesReturned prometheus.Counter

	// Explanations
	explainRequests    prometheus.Counter
	narrativeAttempts  prometheus.Counter
	narrativeFallbacks prometheus.Counter
	narrativeErrors    prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid the default Go runtime collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "recon",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.pairsScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pairs_scored_total",
		Help:      "Total number of invoice/transaction pairs scored",
	})

	m.pairsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pairs_skipped_total",
		Help:      "Total number of pairs skipped because a record was malformed",
	})

	m.rankRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rank_requests_total",
		Help:      "Total number of ranking batches served",
	})

	m.rankDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rank_duration_milliseconds",
		Help:      "Histogram of end-to-end ranking batch duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.candidatesReturned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_returned_total",
		Help:      "Total number of match candidates returned to callers",
	})

	m.explainRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "explain_requests_total",
		Help:      "Total number of single-pair explain requests served",
	})

	m.narrativeAttempts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "narrative_attempts_total",
		Help:      "Total number of external narrative generation attempts",
	})

	m.narrativeFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "narrative_fallbacks_total",
		Help:      "Total number of explanations served by the deterministic fallback",
	})

	m.narrativeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "narrative_errors_total",
		Help:      "Total number of external narrative generation failures",
	})
}

// Package-level helpers operating on the global manager.

// RecordPairsScored adds to the scored-pair counter.
func RecordPairsScored(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.pairsScored.Add(float64(n))
	}
}

// RecordPairsSkipped adds to the skipped-pair counter.
func RecordPairsSkipped(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.pairsSkipped.Add(float64(n))
	}
}

// RecordRankRequest counts one ranking batch.
func RecordRankRequest() {
	if globalManager.enabled {
		globalManager.rankRequests.Inc()
	}
}

// RecordRankDuration observes one batch duration in milliseconds.
func RecordRankDuration(ms float64) {
	if globalManager.enabled {
		globalManager.rankDuration.Observe(ms)
	}
}

// RecordCandidatesReturned adds to the returned-candidate counter.
func RecordCandidatesReturned(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.candidatesReturned.Add(float64(n))
	}
}

// RecordExplainRequest counts one explain request.
func RecordExplainRequest() {
	if globalManager.enabled {
		globalManager.explainRequests.Inc()
	}
}

// RecordNarrativeAttempt counts one external narrative attempt.
func RecordNarrativeAttempt() {
	if globalManager.enabled {
		globalManager.narrativeAttempts.Inc()
	}
}

// RecordNarrativeFallback counts one fallback-sourced explanation.
func RecordNarrativeFallback() {
	if globalManager.enabled {
		globalManager.narrativeFallbacks.Inc()
	}
}

// RecordNarrativeError counts one external narrative failure.
func RecordNarrativeError() {
	if globalManager.enabled {
		globalManager.narrativeErrors.Inc()
	}
}

// GetRegistry exposes the custom registry for scraping or inspection.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
