// Package metrics provides the centralized Prometheus metrics registry for
// the API client. All metrics are defined in their respective packages
// (client, cache) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the API client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - apiclient_cache_hits_total (Counter): Cache hits
//   - apiclient_cache_misses_total (Counter): Cache misses
//   - apiclient_cache_evictions_total{reason} (Counter): Evictions by reason (expired, overflow, invalidated)
//   - apiclient_cache_entries (Gauge): Current number of cached entries
//
// Request Metrics (pkg/client):
//   - apiclient_requests_total{method, outcome} (Counter): Logical requests by method and outcome
//     (success, error, aborted, cache_hit)
//   - apiclient_request_duration_seconds{method} (Histogram): Logical request duration by method
//   - apiclient_dedup_joins_total (Counter): Callers coalesced onto an in-flight identical request
//   - apiclient_aborts_total (Counter): In-flight requests aborted
//   - apiclient_poll_rounds_total (Counter): Polling rounds issued
//
// Retry Metrics (pkg/client):
//   - apiclient_retries_total (Counter): Retry attempts
//   - apiclient_retry_exhausted_total (Counter): Requests that exhausted max retries
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(apiclient_cache_hits_total[5m])) /
//   (sum(rate(apiclient_cache_hits_total[5m])) + sum(rate(apiclient_cache_misses_total[5m])))
//
//   # Dedup Savings
//   rate(apiclient_dedup_joins_total[5m]) / rate(apiclient_requests_total[5m])
//
//   # Request Error Rate
//   sum(rate(apiclient_requests_total{outcome="error"}[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(apiclient_request_duration_seconds_bucket[5m]))
