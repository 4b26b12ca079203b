package cache

import (
	"container/list"
	"context"
	"reflect"
	"sync"
	"time"
)

type memoryItem struct {
	key      string
	value    interface{}
	expireAt time.Time
}

func (m *memoryItem) expired(now time.Time) bool {
	return !m.expireAt.IsZero() && now.After(m.expireAt)
}

// MemoryCache implements Service as a bounded LRU. Values are stored as given,
// so callers must not mutate what they Set.
type MemoryCache struct {
	mutex   sync.Mutex
	items   map[string]*list.Element
	order   *list.List // front = most recently used
	maxSize int
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize: 1000,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.MaxSize < 1 {
		cfg.MaxSize = 1
	}

	mc := &MemoryCache{
		items:   make(map[string]*list.Element, cfg.MaxSize),
		order:   list.New(),
		maxSize: cfg.MaxSize,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go mc.cleanupExpired(cfg.CleanupInterval)
	}
	return mc
}

// Set stores value. A non-positive expiration never expires.
func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	var expireAt time.Time
	if expiration > 0 {
		expireAt = mc.now().Add(expiration)
	}

	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if el, ok := mc.items[key]; ok {
		item := el.Value.(*memoryItem)
		item.value = value
		item.expireAt = expireAt
		mc.order.MoveToFront(el)
		return nil
	}

	for mc.order.Len() >= mc.maxSize {
		mc.removeElement(mc.order.Back())
	}
	mc.items[key] = mc.order.PushFront(&memoryItem{key: key, value: value, expireAt: expireAt})
	return nil
}

// Get assigns the stored value to dest, which must be a pointer to a type
// the value is assignable to.
func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mutex.Lock()
	el, ok := mc.items[key]
	if !ok {
		mc.mutex.Unlock()
		return ErrCacheMiss
	}
	item := el.Value.(*memoryItem)
	if item.expired(mc.now()) {
		mc.removeElement(el)
		mc.mutex.Unlock()
		return ErrCacheMiss
	}
	mc.order.MoveToFront(el)
	value := item.value
	mc.mutex.Unlock()

	return assign(dest, value)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	for _, key := range keys {
		if el, ok := mc.items[key]; ok {
			mc.removeElement(el)
		}
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	now := mc.now()
	for _, key := range keys {
		if el, ok := mc.items[key]; ok && !el.Value.(*memoryItem).expired(now) {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the number of stored entries, expired ones included until swept.
func (mc *MemoryCache) Len() int {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	return mc.order.Len()
}

// Close stops the cleanup goroutine.
func (mc *MemoryCache) Close() error {
	mc.once.Do(func() { close(mc.stop) })
	return nil
}

func (mc *MemoryCache) removeElement(el *list.Element) {
	if el == nil {
		return
	}
	mc.order.Remove(el)
	delete(mc.items, el.Value.(*memoryItem).key)
}

func (mc *MemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mutex.Lock()
			now := mc.now()
			for el := mc.order.Back(); el != nil; {
				prev := el.Prev()
				if el.Value.(*memoryItem).expired(now) {
					mc.removeElement(el)
				}
				el = prev
			}
			mc.mutex.Unlock()
		case <-mc.stop:
			return
		}
	}
}

func assign(dest, value interface{}) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return ErrTypeMismatch
	}
	target := dv.Elem()
	if value == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	vv := reflect.ValueOf(value)
	switch {
	case vv.Type().AssignableTo(target.Type()):
		target.Set(vv)
	case vv.Kind() == reflect.Ptr && !vv.IsNil() && vv.Elem().Type().AssignableTo(target.Type()):
		target.Set(vv.Elem())
	default:
		return ErrTypeMismatch
	}
	return nil
}
