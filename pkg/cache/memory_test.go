package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type cachedQuote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	in := cachedQuote{Symbol: "AAPL", Price: 187.5}
	if err := mc.Set(ctx, "quote:AAPL", in, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out cachedQuote
	if err := mc.Get(ctx, "quote:AAPL", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var out cachedQuote
	err := mc.Get(context.Background(), "quote:MSFT", &out)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", 5*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	var out string
	if err := mc.Get(ctx, "k", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after ttl, got %v", err)
	}
}

func TestMemoryCacheZeroTTLDoesNotExpire(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out string
	if err := mc.Get(ctx, "k", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != "v" {
		t.Fatalf("got %q", out)
	}
}

func TestMemoryCacheEvictsOldest(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := mc.Set(ctx, key, key, time.Minute); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
		time.Sleep(time.Millisecond)
	}

	var out string
	if err := mc.Get(ctx, "a", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected oldest entry evicted, got %v", err)
	}
	for _, key := range []string{"b", "c"} {
		if err := mc.Get(ctx, key, &out); err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
	}
}

func TestMemoryCacheOverwriteKeepsSize(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "a", 1, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := mc.Set(ctx, "b", 2, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Rewriting an existing key must not evict anything.
	if err := mc.Set(ctx, "a", 3, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out int
	if err := mc.Get(ctx, "a", &out); err != nil || out != 3 {
		t.Fatalf("get a: %v (out=%d)", err, out)
	}
	if err := mc.Get(ctx, "b", &out); err != nil || out != 2 {
		t.Fatalf("get b: %v (out=%d)", err, out)
	}
}

func TestGenerateKey(t *testing.T) {
	if got := GenerateKey("quote", "AAPL"); got != "quote:AAPL" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := GenerateKeyWithParams("news", "AAPL", "1mo"); got != "news:AAPL:1mo" {
		t.Fatalf("unexpected key %q", got)
	}
}
