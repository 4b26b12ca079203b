package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type point struct {
	Values []float64
	Label  string
}

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	if err := mc.Set(ctx, "a", point{Values: []float64{1, 2}, Label: "x"}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got point
	if err := mc.Get(ctx, "a", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Label != "x" || len(got.Values) != 2 {
		t.Fatalf("got %+v", got)
	}

	var wrong string
	if err := mc.Get(ctx, "a", &wrong); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if err := mc.Get(ctx, "missing", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	_ = mc.Set(ctx, "a", 1, 0)
	_ = mc.Set(ctx, "b", 2, 0)
	var v int
	if err := mc.Get(ctx, "a", &v); err != nil {
		t.Fatalf("get a: %v", err)
	}
	_ = mc.Set(ctx, "c", 3, 0)

	if mc.Len() != 2 {
		t.Fatalf("len = %d, want 2", mc.Len())
	}
	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if ok, _ := mc.Exists(ctx, k); !ok {
			t.Fatalf("%s should still be cached", k)
		}
	}
}

func TestMemoryOverwriteDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	_ = mc.Set(ctx, "a", 1, 0)
	_ = mc.Set(ctx, "b", 2, 0)
	_ = mc.Set(ctx, "a", 10, 0)

	var v int
	if err := mc.Get(ctx, "b", &v); err != nil || v != 2 {
		t.Fatalf("b = %d, %v", v, err)
	}
	if err := mc.Get(ctx, "a", &v); err != nil || v != 10 {
		t.Fatalf("a = %d, %v", v, err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }

	_ = mc.Set(ctx, "short", "v", time.Minute)
	_ = mc.Set(ctx, "forever", "v", 0)
	now = now.Add(2 * time.Minute)

	var s string
	if err := mc.Get(ctx, "short", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
	if err := mc.Get(ctx, "forever", &s); err != nil {
		t.Fatalf("entry without ttl expired: %v", err)
	}
	if mc.Len() != 1 {
		t.Fatalf("expired entry should be dropped on read, len=%d", mc.Len())
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(16))
	defer mc.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*31+i)%40)
				_ = mc.Set(ctx, key, i, 0)
				var v int
				_ = mc.Get(ctx, key, &v)
			}
		}(g)
	}
	wg.Wait()
	if mc.Len() > 16 {
		t.Fatalf("capacity exceeded: %d", mc.Len())
	}
}

func TestLayeredPromotesRemoteHits(t *testing.T) {
	ctx := context.Background()
	remote := NewMemoryCache()
	l1 := NewMemoryCache()
	lc := NewLayeredCache(remote, l1)
	defer lc.Close()

	_ = remote.Set(ctx, "k", point{Label: "remote"}, 0)
	var got point
	if err := lc.Get(ctx, "k", &got); err != nil || got.Label != "remote" {
		t.Fatalf("got %+v, %v", got, err)
	}
	if ok, _ := l1.Exists(ctx, "k"); !ok {
		t.Fatalf("remote hit should be promoted to L1")
	}

	_ = lc.Set(ctx, "w", point{Label: "both"}, 0)
	if ok, _ := remote.Exists(ctx, "w"); !ok {
		t.Fatalf("set must reach the remote layer")
	}
	if lc.Len() != 2 {
		t.Fatalf("L1 len = %d, want 2", lc.Len())
	}
}

func TestHashFloat64s(t *testing.T) {
	a := HashFloat64s([]float64{1, 2, 3})
	if a != HashFloat64s([]float64{1, 2, 3}) {
		t.Fatalf("hash must be stable")
	}
	if a == HashFloat64s([]float64{1, 2, 3.0000001}) {
		t.Fatalf("different values should hash apart")
	}
	if HashFloat64s([]float64{1, 2}) == HashFloat64s([]float64{2, 1}) {
		t.Fatalf("order must matter")
	}
}

func TestGenerateKey(t *testing.T) {
	if got := GenerateKey("zscore", 8, "abc", 4); got != "zscore:8:abc:4" {
		t.Fatalf("GenerateKey = %q", got)
	}
}
