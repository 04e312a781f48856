package boundedcache

import (
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Cache is a fixed-capacity LRU map with an optional per-entry time-to-live.
// It is safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu   sync.Mutex
	lru  *simplelru.LRU[K, entry[V]]
	size int
	ttl  time.Duration
	now  func() time.Time
}

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Option configures a Cache.
type Option func(*settings)

type settings struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL expires entries older than ttl on lookup. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for TTL checks.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a cache holding at most capacity entries.
func New[K comparable, V any](capacity int, opts ...Option) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, errors.New("cache capacity must be positive")
	}
	cfg := settings{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	lru, err := simplelru.NewLRU[K, entry[V]](capacity, nil)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{lru: lru, size: capacity, ttl: cfg.ttl, now: cfg.now}, nil
}

// Get returns the value for key and marks it most recently used. Expired
// entries are deleted and reported as a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	e, ok := c.lru.Peek(key)
	if !ok {
		return zero, false
	}
	if c.expired(e) {
		c.lru.Remove(key)
		return zero, false
	}
	e, _ = c.lru.Get(key)
	return e.value, true
}

// Set inserts or refreshes key. When the insert pushes the cache over
// capacity the least recently used entry is evicted before Set returns.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, entry[V]{value: value, insertedAt: c.now()})
}

// Has reports whether a live entry exists for key without changing its recency.
func (c *Cache[K, V]) Has(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lru.Peek(key)
	if !ok {
		return false
	}
	if c.expired(e) {
		c.lru.Remove(key)
		return false
	}
	return true
}

// Remove deletes key, reporting whether it was present.
func (c *Cache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Remove(key)
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Keys returns keys from oldest to newest.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}

// Purge drops every entry.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Capacity returns the configured maximum size.
func (c *Cache[K, V]) Capacity() int {
	return c.size
}

func (c *Cache[K, V]) expired(e entry[V]) bool {
	return c.ttl > 0 && c.now().Sub(e.insertedAt) > c.ttl
}
