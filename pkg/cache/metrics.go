package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by backend.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jira_snowflake_cache_hits_total",
			Help: "Total number of query cache hits",
		},
		[]string{"backend"}, // "memory", "redis"
	)

	// CacheMisses tracks cache misses by backend.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jira_snowflake_cache_misses_total",
			Help: "Total number of query cache misses",
		},
		[]string{"backend"},
	)

	// CacheEvictions tracks capacity evictions from the memory backend.
	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jira_snowflake_cache_evictions_total",
			Help: "Total number of entries evicted to respect the capacity bound",
		},
	)

	// CacheErrors tracks cache operation errors.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jira_snowflake_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "clear"
	)
)
