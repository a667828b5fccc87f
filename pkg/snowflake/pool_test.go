package snowflake

import (
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestHTTPPool_ReusesClient(t *testing.T) {
	pool := NewHTTPPool(5, time.Second, zerolog.New(io.Discard))

	first := pool.Client()
	second := pool.Client()
	if first != second {
		t.Error("expected the same client instance across calls")
	}
}

func TestHTTPPool_RecreatesAfterClose(t *testing.T) {
	pool := NewHTTPPool(5, time.Second, zerolog.New(io.Discard))

	first := pool.Client()
	pool.Close()
	second := pool.Client()
	if first == second {
		t.Error("expected a fresh client after Close")
	}
}

func TestHTTPPool_Defaults(t *testing.T) {
	pool := NewHTTPPool(0, 0, zerolog.New(io.Discard))

	client := pool.Client()
	if client.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s default", client.Timeout)
	}
}
