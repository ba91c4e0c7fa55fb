package engine

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func newTestCache(t *testing.T, ttl time.Duration, maxEntries int) *Cache {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewCache(ctx, "", ttl, maxEntries, 5*time.Minute)
}

func TestCacheKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		k1 := CacheKey("search", "golang context", "5")
		k2 := CacheKey("search", "golang context", "5")
		if k1 != k2 {
			t.Errorf("CacheKey not deterministic: %q != %q", k1, k2)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		k1 := CacheKey("search", "golang")
		k2 := CacheKey("search", "python")
		if k1 == k2 {
			t.Errorf("different inputs produced same key: %q", k1)
		}
	})

	t.Run("has prefix", func(t *testing.T) {
		k := CacheKey("test")
		if k[:3] != "cl:" {
			t.Errorf("expected cl: prefix, got %q", k[:3])
		}
	})
}

func TestCacheGetSet(t *testing.T) {
	c := newTestCache(t, time.Minute, 100)
	ctx := context.Background()
	key := CacheKey("test", "round-trip")

	if _, ok := c.Get(ctx, key); ok {
		t.Error("expected cache miss on empty cache")
	}

	c.Set(ctx, key, []byte("hello"))

	got, ok := c.Get(ctx, key)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestCacheJSONRoundTrip(t *testing.T) {
	c := newTestCache(t, time.Minute, 100)
	ctx := context.Background()
	key := CacheKey("keywords", "machine learning")

	CacheStoreJSON(ctx, c, key, []string{"ml", "ai"})
	got, ok := CacheLoadJSON[[]string](ctx, c, key)
	if !ok {
		t.Fatal("expected hit")
	}
	if len(got) != 2 || got[0] != "ml" || got[1] != "ai" {
		t.Errorf("got %v", got)
	}
}

func TestCacheNilIsAlwaysMiss(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"))
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("nil cache must miss")
	}
	if _, ok := CacheLoadJSON[[]string](ctx, c, "k"); ok {
		t.Error("nil cache must miss")
	}
}

func TestCacheExpiration(t *testing.T) {
	c := newTestCache(t, time.Millisecond, 100)
	ctx := context.Background()
	key := CacheKey("test", "expiry")

	c.Set(ctx, key, []byte("temp"))
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get(ctx, key); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestCacheEviction(t *testing.T) {
	c := newTestCache(t, time.Minute, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c.Set(ctx, CacheKey("evict", fmt.Sprintf("item-%d", i)), []byte(fmt.Sprintf("v%d", i)))
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count > 3 {
		t.Errorf("expected at most 3 entries after eviction, got %d", count)
	}
}

func TestCacheStats(t *testing.T) {
	c := newTestCache(t, time.Minute, 100)
	metrics.CacheHits.Store(0)
	metrics.CacheMisses.Store(0)

	ctx := context.Background()
	key := CacheKey("stats", "test")

	c.Get(ctx, key)
	m := GetMetrics()
	if m["cache_misses"] != 1 {
		t.Errorf("misses = %d, want 1", m["cache_misses"])
	}

	c.Set(ctx, key, []byte("x"))
	c.Get(ctx, key)

	m = GetMetrics()
	if m["cache_hits"] != 1 {
		t.Errorf("hits = %d, want 1", m["cache_hits"])
	}
	if m["cache_misses"] != 1 {
		t.Errorf("misses = %d, want 1", m["cache_misses"])
	}
}
