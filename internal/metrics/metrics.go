// Package metrics exposes Prometheus collectors for ranking traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "internmatch"

var (
	RankRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_requests_total",
			Help:      "Total number of ranking requests by entrypoint",
		},
		[]string{"source"},
	)

	RankErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_errors_total",
			Help:      "Total number of ranking requests that failed",
		},
		[]string{"source", "reason"},
	)

	RankDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rank_duration_seconds",
			Help:      "Duration of catalog ranking in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"source"},
	)

	CatalogPostings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_postings",
			Help:      "Number of postings in the loaded catalog",
		},
	)
)
