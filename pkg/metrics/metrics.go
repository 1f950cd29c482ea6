// Package metrics provides Prometheus metrics for the pick scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus metric exposed by the service.
type Manager struct {
	namespace string
	buckets   []float64
	registry  prometheus.Registerer

	// Grading
	picksGraded   prometheus.Counter
	gradingErrors prometheus.Counter
	overrides     prometheus.Counter
	gradeDuration prometheus.Histogram

	// Leaderboard and stats reads
	leaderboardComputes prometheus.Counter
	statsComputes       prometheus.Counter

	// Cache behavior
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	cacheInvalidations prometheus.Counter

	// Job guard
	jobsStarted  prometheus.Counter
	jobsRejected prometheus.Counter

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithRegistry registers metrics on a custom registerer.
func WithRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // dedicated registry avoids default Go metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "pickscore",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.picksGraded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "picks_graded_total",
		Help:      "Picks settled by the grading engine.",
	})
	m.gradingErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "grading_errors_total",
		Help:      "Per-pick grading failures (pick left pending).",
	})
	m.overrides = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "manual_overrides_total",
		Help:      "Manual pick overrides applied.",
	})
	m.gradeDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "grade_duration_seconds",
		Help:      "Wall time to grade one game.",
		Buckets:   m.buckets,
	})
	m.leaderboardComputes = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "leaderboard_computes_total",
		Help:      "Full leaderboard recomputations.",
	})
	m.statsComputes = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "stats_computes_total",
		Help:      "Full user stats recomputations.",
	})
	m.cacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "cache_hits_total",
		Help:      "Reads served from cache.",
	})
	m.cacheMisses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "cache_misses_total",
		Help:      "Reads that fell through to computation.",
	})
	m.cacheInvalidations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "cache_invalidations_total",
		Help:      "Keys deleted by score-affecting writes.",
	})
	m.jobsStarted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "grading_jobs_started_total",
		Help:      "Bulk grading jobs started.",
	})
	m.jobsRejected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "grading_jobs_rejected_total",
		Help:      "Bulk grading jobs rejected by the running-job guard.",
	})
	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method, and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by endpoint and method.",
		Buckets:   m.buckets,
	}, []string{"endpoint", "method"})

	return m
}

// Package-level helpers record on the global manager.

func RecordPickGraded()            { globalManager.picksGraded.Inc() }
func RecordGradingError()          { globalManager.gradingErrors.Inc() }
func RecordOverride()              { globalManager.overrides.Inc() }
func RecordGradeDuration(s float64) { globalManager.gradeDuration.Observe(s) }
func RecordLeaderboardCompute()    { globalManager.leaderboardComputes.Inc() }
func RecordStatsCompute()          { globalManager.statsComputes.Inc() }
func RecordCacheHit()              { globalManager.cacheHits.Inc() }
func RecordCacheMiss()             { globalManager.cacheMisses.Inc() }
func RecordJobStarted()            { globalManager.jobsStarted.Inc() }
func RecordJobRejected()           { globalManager.jobsRejected.Inc() }

// RecordCacheInvalidation counts a batch of deleted keys.
func RecordCacheInvalidation(keys int) {
	globalManager.cacheInvalidations.Add(float64(keys))
}

// RecordHTTPRequest counts one finished request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes one request's latency in seconds.
func RecordHTTPRequestDuration(endpoint, method string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(seconds)
}

// GetRegistry returns the registry backing the global manager, for the
// /metrics endpoint.
func GetRegistry() *prometheus.Registry { return customRegistry }
