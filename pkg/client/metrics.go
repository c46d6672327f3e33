package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for orchestrator operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apiclient_requests_total",
		Help: "Total logical requests by method and outcome",
	}, []string{"method", "outcome"}) // outcome: success, error, aborted, cache_hit

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "apiclient_request_duration_seconds",
		Help:    "Logical request duration in seconds by method",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"method"})

	dedupJoinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apiclient_dedup_joins_total",
		Help: "Callers coalesced onto an in-flight identical request",
	})

	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apiclient_retries_total",
		Help: "Total number of retry attempts",
	})

	retryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apiclient_retry_exhausted_total",
		Help: "Total number of requests that exhausted their retries",
	})

	abortsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apiclient_aborts_total",
		Help: "Total number of in-flight requests aborted",
	})

	pollRoundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apiclient_poll_rounds_total",
		Help: "Total number of polling rounds issued",
	})
)
