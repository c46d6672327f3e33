package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apiclient_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apiclient_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	cacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiclient_cache_evictions_total",
			Help: "Total number of cache evictions by reason",
		},
		[]string{"reason"}, // "expired", "overflow", "invalidated"
	)

	cacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "apiclient_cache_entries",
			Help: "Current number of live cache entries",
		},
	)
)
