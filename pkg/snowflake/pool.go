package snowflake

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// HTTPPool owns the single keep-alive HTTP client shared by all statement
// submissions. The client is built lazily on first use and rebuilt after
// Close, so shutdown and reconnect follow the same path.
type HTTPPool struct {
	maxConnections int
	timeout        time.Duration
	logger         zerolog.Logger

	mu     sync.Mutex
	client *http.Client
}

// NewHTTPPool creates an HTTP pool bounded by maxConnections keep-alive
// connections with a per-request timeout.
func NewHTTPPool(maxConnections int, timeout time.Duration, logger zerolog.Logger) *HTTPPool {
	if maxConnections <= 0 {
		maxConnections = 20
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPPool{
		maxConnections: maxConnections,
		timeout:        timeout,
		logger:         logger.With().Str("component", "http-pool").Logger(),
	}
}

// Client returns the shared HTTP client, creating it if none exists or the
// previous one was closed.
func (p *HTTPPool) Client() *http.Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		transport := &http.Transport{
			MaxConnsPerHost:     p.maxConnections,
			MaxIdleConns:        p.maxConnections,
			MaxIdleConnsPerHost: p.maxConnections,
			IdleConnTimeout:     90 * time.Second,
		}
		p.client = &http.Client{
			Transport: transport,
			Timeout:   p.timeout,
		}
		p.logger.Debug().
			Int("max_connections", p.maxConnections).
			Dur("timeout", p.timeout).
			Msg("created http client")
	}
	return p.client
}

// Close releases the pooled client; a later Client call lazily recreates it.
func (p *HTTPPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		return
	}
	if transport, ok := p.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
	p.client = nil
	p.logger.Debug().Msg("closed http client")
}
