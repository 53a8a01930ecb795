package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "snoowrap"

var (
	// APIRequestsTotal counts requests to Reddit by method, endpoint and result.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Requests sent to the Reddit API.",
		},
		[]string{"method", "endpoint", "result"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Latency of Reddit API requests including retries.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ExpansionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expansions_total",
			Help:      "Reply tree expansions by result.",
		},
		[]string{"result"},
	)

	ExpansionFetchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expansion_fetches_total",
			Help:      "Listing fetches issued while expanding reply trees.",
		},
	)

	ExpansionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "expansion_duration_seconds",
			Help:      "Wall time of reply tree expansions.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
)

func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
