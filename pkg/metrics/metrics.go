// Package metrics provides the centralized Prometheus metrics registry for
// the gateway. All metrics are defined in their respective packages (auth,
// cache, ratelimit, snowflake) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the gateway.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Auth Metrics (pkg/auth):
//   - jira_snowflake_auth_tokens_issued_total (Counter): Keypair JWTs signed
//   - jira_snowflake_auth_token_cache_hits_total (Counter): Resolutions served from the token cache
//   - jira_snowflake_auth_failures_total{reason} (Counter): Credential resolution failures
//
// Cache Metrics (pkg/cache):
//   - jira_snowflake_cache_hits_total{backend} (Counter): Query cache hits by backend
//   - jira_snowflake_cache_misses_total{backend} (Counter): Query cache misses by backend
//   - jira_snowflake_cache_evictions_total (Counter): Capacity evictions from the memory backend
//   - jira_snowflake_cache_errors_total{operation} (Counter): Cache operation errors
//
// Rate Limit Metrics (pkg/ratelimit):
//   - jira_snowflake_rate_limit_acquires_total (Counter): Slots granted
//   - jira_snowflake_rate_limit_wait_seconds (Histogram): Time spent waiting for a slot
//   - jira_snowflake_rate_limit_cancelled_total (Counter): Waits abandoned on context cancellation
//
// Query Metrics (pkg/snowflake):
//   - jira_snowflake_queries_total{outcome} (Counter): Statement executions by outcome
//   - jira_snowflake_query_duration_seconds (Histogram): End-to-end statement duration
//   - jira_snowflake_partitions_fetched_total (Counter): Partition continuation fetches
//   - jira_snowflake_partitions_failed_total (Counter): Partition fetches skipped on failure
//   - jira_snowflake_retries_total{error_class} (Counter): Transport retry attempts
//   - jira_snowflake_rows_decoded_total (Counter): Rows converted to named-field records
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(jira_snowflake_cache_hits_total[5m])) /
//   (sum(rate(jira_snowflake_cache_hits_total[5m])) + sum(rate(jira_snowflake_cache_misses_total[5m])))
//
//   # Query Error Rate
//   rate(jira_snowflake_queries_total{outcome="error"}[5m])
//
//   # P95 Query Latency
//   histogram_quantile(0.95, rate(jira_snowflake_query_duration_seconds_bucket[5m]))
//
//   # Partial Result Rate
//   rate(jira_snowflake_partitions_failed_total[5m])
