// Package metrics provides the centralized Prometheus registry reference
// for the UniProt client. All metrics are defined in their respective
// packages (client, pagination, cache, ratelimit) to maintain modularity
// and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - uniprot_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - uniprot_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - uniprot_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - uniprot_retries_total{error_class} (Counter): Retry attempts by error class
//   - uniprot_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - uniprot_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Pagination Metrics (pkg/pagination):
//   - uniprot_pages_fetched_total (Counter): Result pages fetched
//   - uniprot_rows_fetched_total (Counter): Result rows fetched
//   - uniprot_partial_results_total (Counter): Fetches aborted with partial data
//
// Cache Metrics (pkg/cache):
//   - uniprot_cache_hits_total{layer="redis"} (Counter): Result table cache hits by layer
//   - uniprot_cache_misses_total (Counter): Result table cache misses
//   - uniprot_cache_size_bytes{layer="redis"} (Gauge): Current cache size in bytes
//   - uniprot_cache_errors_total{operation} (Counter): Cache operation errors
//
// Rate Limit Metrics (pkg/ratelimit):
//   - uniprot_rate_limit_blocks_total (Counter): Requests blocked during an active cooldown
//   - uniprot_rate_limit_cooldowns_total (Counter): Cooldowns recorded from 429 responses
//   - uniprot_rate_limit_cooldown_seconds (Gauge): Most recent cooldown duration
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(uniprot_cache_hits_total[5m])) /
//   (sum(rate(uniprot_cache_hits_total[5m])) + sum(rate(uniprot_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(uniprot_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(uniprot_request_duration_seconds_bucket[5m]))
//
//   # Partial Result Rate
//   rate(uniprot_partial_results_total[5m]) / rate(uniprot_pages_fetched_total[5m])
