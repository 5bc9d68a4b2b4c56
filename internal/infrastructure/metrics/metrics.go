// Package metrics provides Prometheus metrics for loreindex.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the search service.
type Metrics struct {
	SearchesTotal    *prometheus.CounterVec
	SearchDuration   prometheus.Histogram
	DocumentsIndexed prometheus.Gauge
	RebuildsTotal    prometheus.Counter
}

// New creates the metrics and registers them on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loreindex_searches_total",
				Help: "Total number of search requests",
			},
			[]string{"status"},
		),
		SearchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "loreindex_search_duration_seconds",
				Help:    "Duration of search requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		DocumentsIndexed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "loreindex_documents_indexed",
				Help: "Number of documents in the current index snapshot",
			},
		),
		RebuildsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "loreindex_rebuilds_total",
				Help: "Total number of index rebuilds",
			},
		),
	}

	reg.MustRegister(m.SearchesTotal, m.SearchDuration, m.DocumentsIndexed, m.RebuildsTotal)
	return m
}
