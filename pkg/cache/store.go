package cache

import (
	"context"
	"reflect"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store is the interface query results are cached behind. Implementations
// must be safe for concurrent use by multiple in-flight requests.
//
// Get copies the cached value into dest, which must be a non-nil pointer to
// the same type that was passed to Set. The Redis backend round-trips values
// through JSON, so cacheable types must marshal cleanly.
type Store interface {
	// Get loads the value cached under key into dest and reports whether a
	// live entry was found.
	Get(ctx context.Context, key string, dest any) bool

	// Set stores a value under key for the store's TTL.
	Set(ctx context.Context, key string, value any)

	// Clear drops all entries.
	Clear(ctx context.Context)
}

// Options selects and sizes a cache backend.
type Options struct {
	// Enabled wires the no-op store when false.
	Enabled bool

	// Backend is "memory" or "redis".
	Backend string

	// TTL is the per-entry time to live.
	TTL time.Duration

	// MaxSize bounds the entry count (memory backend).
	MaxSize int

	// RedisAddr is the Redis address (redis backend).
	RedisAddr string
}

// NewStore builds the Store selected by opts. Disabled caching yields the
// no-op implementation so callers never branch on the flag.
func NewStore(opts Options, logger zerolog.Logger) Store {
	if !opts.Enabled {
		return Noop{}
	}

	switch opts.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		return NewRedis(client, opts.TTL, logger)
	default:
		return NewMemory(opts.MaxSize, opts.TTL)
	}
}

// Noop is the disabled-cache implementation: every Get misses, Set and
// Clear do nothing.
type Noop struct{}

// Get always reports a miss.
func (Noop) Get(ctx context.Context, key string, dest any) bool { return false }

// Set discards the value.
func (Noop) Set(ctx context.Context, key string, value any) {}

// Clear does nothing.
func (Noop) Clear(ctx context.Context) {}

// assign copies value into the pointer dest when the types line up.
func assign(dest, value any) bool {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return false
	}
	vv := reflect.ValueOf(value)
	if !vv.IsValid() || !vv.Type().AssignableTo(dv.Elem().Type()) {
		return false
	}
	dv.Elem().Set(vv)
	return true
}
