package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(10, time.Minute)

	rows := [][]any{{"10001", "PROJ-1", "First issue"}}
	store.Set(ctx, "list_issues:project:PROJ", rows)

	var got [][]any
	if !store.Get(ctx, "list_issues:project:PROJ", &got) {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0][1] != "PROJ-1" {
		t.Errorf("got %v, want cached rows", got)
	}
}

func TestMemory_Miss(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(10, time.Minute)

	var got [][]any
	if store.Get(ctx, "nonexistent", &got) {
		t.Error("expected cache miss for unknown key")
	}
}

func TestMemory_TypeMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(10, time.Minute)

	store.Set(ctx, "key", "a string value")

	var got [][]any
	if store.Get(ctx, "key", &got) {
		t.Error("expected miss when cached type does not match dest")
	}
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(10, 20*time.Millisecond)

	store.Set(ctx, "key", "value")

	var got string
	if !store.Get(ctx, "key", &got) {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(50 * time.Millisecond)

	if store.Get(ctx, "key", &got) {
		t.Error("expected miss after TTL elapsed")
	}
}

func TestMemory_CapacityEviction(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(2, time.Minute)

	store.Set(ctx, "a", 1)
	store.Set(ctx, "b", 2)
	store.Set(ctx, "c", 3)

	if store.Len() > 2 {
		t.Errorf("Len() = %d, want at most 2", store.Len())
	}

	var got int
	if store.Get(ctx, "a", &got) {
		t.Error("expected oldest entry evicted at capacity")
	}
	if !store.Get(ctx, "c", &got) || got != 3 {
		t.Errorf("expected newest entry retained, got %d", got)
	}
}

func TestMemory_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(10, time.Minute)

	store.Set(ctx, "a", 1)
	store.Set(ctx, "b", 2)
	store.Clear(ctx)

	if store.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", store.Len())
	}
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var store Store = Noop{}

	store.Set(ctx, "key", "value")

	var got string
	if store.Get(ctx, "key", &got) {
		t.Error("noop store must never report a hit")
	}
	store.Clear(ctx)
}

func TestNewStore_Selection(t *testing.T) {
	logger := testLogger()

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "disabled yields noop",
			opts: Options{Enabled: false},
			want: "cache.Noop",
		},
		{
			name: "memory backend",
			opts: Options{Enabled: true, Backend: "memory", MaxSize: 10, TTL: time.Minute},
			want: "*cache.Memory",
		},
		{
			name: "unknown backend falls back to memory",
			opts: Options{Enabled: true, Backend: "bogus", MaxSize: 10, TTL: time.Minute},
			want: "*cache.Memory",
		},
		{
			name: "redis backend",
			opts: Options{Enabled: true, Backend: "redis", RedisAddr: "localhost:6379", TTL: time.Minute},
			want: "*cache.Redis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(tt.opts, logger)
			got := typeName(store)
			if got != tt.want {
				t.Errorf("NewStore() = %s, want %s", got, tt.want)
			}
		})
	}
}
