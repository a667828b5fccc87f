package snowflake

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for query execution.
var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jira_snowflake_queries_total",
		Help: "Total statements executed by outcome",
	}, []string{"outcome"}) // "success", "error", "cached"

	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jira_snowflake_query_duration_seconds",
		Help:    "End-to-end statement duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	partitionsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jira_snowflake_partitions_fetched_total",
		Help: "Total partition continuation fetches",
	})

	partitionsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jira_snowflake_partitions_failed_total",
		Help: "Total partition fetches skipped after failure",
	})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jira_snowflake_retries_total",
		Help: "Total transport retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jira_snowflake_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jira_snowflake_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})

	rowsDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jira_snowflake_rows_decoded_total",
		Help: "Total rows converted to named-field records",
	})
)
