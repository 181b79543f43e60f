// Package metrics exposes search counters and latencies for the transports.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeInvalid     = "invalid"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Metrics owns a private registry so tests and embedders never collide on
// the global one.
type Metrics struct {
	registry *prometheus.Registry

	// searchesTotal counts search requests.
	// Labels: transport (ipc, http), outcome
	searchesTotal *prometheus.CounterVec

	// searchSeconds measures time spent inside the index.
	// Labels: transport
	searchSeconds *prometheus.HistogramVec

	// resultsReturned tracks how many results a search returned.
	resultsReturned prometheus.Histogram

	// candidates reports loaded candidates per type.
	// Labels: type
	candidates *prometheus.GaugeVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		searchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentionserve",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Search requests by transport and outcome",
		}, []string{"transport", "outcome"}),
		searchSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mentionserve",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Time spent answering a search",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		}, []string{"transport"}),
		resultsReturned: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mentionserve",
			Subsystem: "search",
			Name:      "results",
			Help:      "Number of results returned per search",
			Buckets:   prometheus.LinearBuckets(0, 5, 11),
		}),
		candidates: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mentionserve",
			Subsystem: "index",
			Name:      "candidates",
			Help:      "Loaded candidates by type",
		}, []string{"type"}),
	}
}

// ObserveSearch records one finished search. A nil Metrics is a no-op.
func (m *Metrics) ObserveSearch(transport, outcome string, took time.Duration, results int) {
	if m == nil {
		return
	}
	m.searchesTotal.WithLabelValues(transport, outcome).Inc()
	if outcome == OutcomeOK || outcome == OutcomeEmpty {
		m.searchSeconds.WithLabelValues(transport).Observe(took.Seconds())
		m.resultsReturned.Observe(float64(results))
	}
}

// ObserveRejected records a request that never reached the index.
func (m *Metrics) ObserveRejected(transport, outcome string) {
	if m == nil {
		return
	}
	m.searchesTotal.WithLabelValues(transport, outcome).Inc()
}

// SetCandidates publishes the candidate count of a type.
func (m *Metrics) SetCandidates(typ string, n int) {
	if m == nil {
		return
	}
	m.candidates.WithLabelValues(typ).Set(float64(n))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Outcome picks the label for a completed search.
func Outcome(err error, results int) string {
	switch {
	case err != nil:
		return OutcomeError
	case results == 0:
		return OutcomeEmpty
	default:
		return OutcomeOK
	}
}
