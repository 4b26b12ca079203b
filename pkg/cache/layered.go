package cache

import (
	"context"
	"errors"
	"reflect"
	"time"
)

// LayeredCache implements two-level cache (L1: Memory, L2: any Service, usually Redis).
type LayeredCache struct {
	memCache *MemoryCache
	remote   Service
}

// NewLayeredCache wraps remote with a memory L1 of the given size.
func NewLayeredCache(remote Service, memory *MemoryCache) *LayeredCache {
	if memory == nil {
		memory = NewMemoryCache()
	}
	return &LayeredCache{memCache: memory, remote: remote}
}

// Set writes memory first, so a remote failure still leaves L1 populated.
func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	_ = lc.memCache.Set(ctx, key, value, expiration)
	return lc.remote.Set(ctx, key, value, expiration)
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.memCache.Get(ctx, key, dest); err == nil {
		return nil
	} else if !errors.Is(err, ErrCacheMiss) {
		return err
	}

	if err := lc.remote.Get(ctx, key, dest); err != nil {
		return err
	}

	// Promote to L1. The remote TTL is not known here, so L1 keeps it until evicted.
	_ = lc.memCache.Set(ctx, key, reflect.ValueOf(dest).Elem().Interface(), 0)
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	return lc.remote.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, _ := lc.memCache.Exists(ctx, keys...); ok {
		return true, nil
	}
	return lc.remote.Exists(ctx, keys...)
}

// Len reports the L1 size.
func (lc *LayeredCache) Len() int {
	return lc.memCache.Len()
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.memCache.Close()
	return lc.remote.Close()
}
