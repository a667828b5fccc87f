package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is the default cache backend: a size-bounded LRU with per-entry
// expiry, held entirely in process memory.
type Memory struct {
	lru *expirable.LRU[string, any]
}

// NewMemory builds a memory store holding at most maxSize entries, each
// expiring ttl after it was written.
func NewMemory(maxSize int, ttl time.Duration) *Memory {
	onEvict := func(key string, value any) {
		CacheEvictions.Inc()
	}
	return &Memory{
		lru: expirable.NewLRU[string, any](maxSize, onEvict, ttl),
	}
}

// Get loads the entry cached under key into dest.
func (m *Memory) Get(ctx context.Context, key string, dest any) bool {
	value, ok := m.lru.Get(key)
	if !ok {
		CacheMisses.WithLabelValues("memory").Inc()
		return false
	}
	if !assign(dest, value) {
		CacheMisses.WithLabelValues("memory").Inc()
		return false
	}
	CacheHits.WithLabelValues("memory").Inc()
	return true
}

// Set stores value under key.
func (m *Memory) Set(ctx context.Context, key string, value any) {
	m.lru.Add(key, value)
}

// Clear drops all entries.
func (m *Memory) Clear(ctx context.Context) {
	m.lru.Purge()
}

// Len reports the number of live entries.
func (m *Memory) Len() int {
	return m.lru.Len()
}
