package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricQueriesTotal    = "artist_queries_total"
	MetricQueryDuration   = "artist_query_duration_seconds"
	MetricQueryCandidates = "artist_query_candidates"
	MetricQueryResults    = "artist_query_results"
)

// OutcomeSuccess labels successful queries; failures use their Kind.
const OutcomeSuccess = "success"

const outcomeLabel = "outcome"

// Metrics holds the Prometheus collectors for artist listing.
// All operations are thread-safe.
type Metrics struct {
	queriesTotal  *prometheus.CounterVec
	queryDuration prometheus.Histogram
	candidates    prometheus.Histogram
	results       prometheus.Histogram
}

// NewMetrics creates unregistered collectors; call Register to expose them.
func NewMetrics() *Metrics {
	return &Metrics{
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricQueriesTotal,
				Help: "Total number of artist list queries by outcome",
			},
			[]string{outcomeLabel},
		),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricQueryDuration,
			Help:    "Artist list query duration in seconds, including the repository load",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricQueryCandidates,
			Help:    "Number of artists loaded per query before filtering",
			Buckets: prometheus.ExponentialBuckets(1, 10, 6),
		}),
		results: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricQueryResults,
			Help:    "Number of artists returned per query",
			Buckets: prometheus.ExponentialBuckets(1, 10, 6),
		}),
	}
}

// Register registers all collectors with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all collectors, mainly for tests.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.queriesTotal,
		m.queryDuration,
		m.candidates,
		m.results,
	}
}

func (m *Metrics) observe(outcome string, seconds float64, candidates, results int) {
	if m == nil {
		return
	}
	m.queriesTotal.WithLabelValues(outcome).Inc()
	m.queryDuration.Observe(seconds)
	if outcome == OutcomeSuccess {
		m.candidates.Observe(float64(candidates))
		m.results.Observe(float64(results))
	}
}
