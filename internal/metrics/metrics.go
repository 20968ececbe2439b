// Package metrics defines the Prometheus collectors for parsing, searching
// and word correction, plus the scrape handler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	QueriesParsedTotal *prometheus.CounterVec
	SearchLatency      prometheus.Histogram
	SearchResultsCount prometheus.Histogram
	CorrectionsTotal   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		QueriesParsedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulletins_queries_parsed_total",
				Help: "Parsed queries by result target (articles, rubrics).",
			},
			[]string{"target"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bulletins_search_latency_seconds",
				Help:    "Structured query execution latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bulletins_search_results_count",
				Help:    "Number of documents or rubrics returned per query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		CorrectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulletins_corrections_total",
				Help: "Lemmatize outcomes (exact, corrected, miss).",
			},
			[]string{"outcome"},
		),
		gatherer: reg,
	}
	reg.MustRegister(
		m.QueriesParsedTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CorrectionsTotal,
	)
	return m
}

// ObserveParse counts one parsed query.
func (m *Metrics) ObserveParse(target string) {
	if m == nil {
		return
	}
	m.QueriesParsedTotal.WithLabelValues(target).Inc()
}

// ObserveSearch records latency and result size of one execution.
func (m *Metrics) ObserveSearch(elapsed time.Duration, results int) {
	if m == nil {
		return
	}
	m.SearchLatency.Observe(elapsed.Seconds())
	m.SearchResultsCount.Observe(float64(results))
}

// ObserveCorrection counts one lemmatize outcome.
func (m *Metrics) ObserveCorrection(outcome string) {
	if m == nil {
		return
	}
	m.CorrectionsTotal.WithLabelValues(outcome).Inc()
}

// Gatherer exposes the private registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
