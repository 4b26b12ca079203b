package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss    = errors.New("cache: key not found")
	ErrTypeMismatch = errors.New("cache: destination type does not match stored value")
)

// Service defines cache operations interface.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// Get decodes the value stored under key into dest, which must be a pointer.
	// A missing or expired key returns ErrCacheMiss.
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Close() error
}

// Sizer is implemented by backends that can report their entry count cheaply.
type Sizer interface {
	Len() int
}
