// Package cache provides bounded, time-expiring caching of query results.
//
// The cache front-ends the warehouse: identical logical requests inside the
// TTL window are served from memory (or Redis) instead of re-submitting the
// statement. Features:
//
// - Deterministic key generation from operation name + sorted parameters
// - Per-entry TTL with capacity-bounded eviction
// - Interchangeable backends: in-process memory (default), Redis, no-op
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	store := cache.NewMemory(1000, 5*time.Minute)
//
//	key := cache.Key("execute_query", map[string]string{"sql": sql})
//
//	var rows [][]any
//	if store.Get(ctx, key, &rows) {
//		return rows, nil
//	}
//
//	// miss: query the warehouse, then
//	store.Set(ctx, key, rows)
//
// # Backend Selection
//
// The backend is chosen at construction time from configuration. When caching
// is disabled the no-op store is wired in; callers never branch on the flag.
//
//	store := cache.NewStore(cfg, logger)
//
// # Metrics
//
//   - jira_snowflake_cache_hits_total{backend}   - Cache hits
//   - jira_snowflake_cache_misses_total{backend} - Cache misses
//   - jira_snowflake_cache_evictions_total      - Capacity evictions (memory)
//   - jira_snowflake_cache_errors_total{operation} - Backend errors (redis)
package cache
