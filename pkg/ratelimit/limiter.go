// Package ratelimit bounds the outbound request rate to the warehouse.
// Every statement submission and partition fetch passes through Acquire
// before touching the network.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for rate limit gating.
var (
	acquiresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jira_snowflake_rate_limit_acquires_total",
		Help: "Total number of rate limiter acquisitions",
	})

	waitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jira_snowflake_rate_limit_wait_seconds",
		Help:    "Time spent waiting for a rate limit slot",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	cancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jira_snowflake_rate_limit_cancelled_total",
		Help: "Total number of acquisitions abandoned before a slot was free",
	})
)

// Limiter gates outbound requests at a fixed requests-per-second ceiling.
// Waiters are served in roughly arrival order.
type Limiter struct {
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// New creates a limiter allowing perSecond requests per second.
// Burst equals the per-second budget so short spikes drain within one window.
func New(perSecond int, logger zerolog.Logger) *Limiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
		logger:  logger,
	}
}

// Acquire blocks until a request slot is available or the context ends.
func (l *Limiter) Acquire(ctx context.Context) error {
	start := time.Now()

	if err := l.limiter.Wait(ctx); err != nil {
		cancelledTotal.Inc()
		l.logger.Warn().
			Err(err).
			Dur("waited", time.Since(start)).
			Msg("Rate limit acquisition abandoned")
		return fmt.Errorf("rate limit acquire: %w", err)
	}

	waited := time.Since(start)
	acquiresTotal.Inc()
	waitSeconds.Observe(waited.Seconds())

	if waited > 100*time.Millisecond {
		l.logger.Debug().
			Dur("waited", waited).
			Msg("Request throttled by rate limiter")
	}

	return nil
}

// Limit returns the configured requests-per-second ceiling.
func (l *Limiter) Limit() float64 {
	return float64(l.limiter.Limit())
}
