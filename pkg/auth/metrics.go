package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TokensIssued counts freshly signed keypair tokens. A low rate means the
	// token cache is doing its job.
	TokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jira_snowflake_auth_tokens_issued_total",
			Help: "Total number of keypair JWTs signed",
		},
	)

	// TokenCacheHits counts Resolve calls served from the cached token.
	TokenCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jira_snowflake_auth_token_cache_hits_total",
			Help: "Total number of credential resolutions served from the token cache",
		},
	)

	// Failures counts credential resolution failures by reason.
	Failures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jira_snowflake_auth_failures_total",
			Help: "Total number of credential resolution failures",
		},
		[]string{"reason"}, // "missing_token", "key_load", "sign"
	)
)
