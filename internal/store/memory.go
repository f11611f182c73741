package store

import (
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultTTL is how long a cached payload stays fresh.
const DefaultTTL = 10 * time.Minute

// entry holds a cached payload and the time it was written.
type entry struct {
	value    any
	storedAt time.Time
}

// MemoryCache is a concurrency-safe in-memory TTL cache for provider payloads.
// Expired entries are never swept; they linger until overwritten.
type MemoryCache struct {
	mu sync.RWMutex

	// key: weather.LocationQuery.Key(kind)
	data map[string]entry

	ttl time.Duration
	now func() time.Time
}

// NewMemoryCache creates a cache with the given TTL and clock.
// A ttl <= 0 falls back to DefaultTTL and a nil clock to time.Now.
func NewMemoryCache(ttl time.Duration, now func() time.Time) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{
		data: make(map[string]entry),
		ttl:  ttl,
		now:  now,
	}
}

// Get returns the payload stored for kind and q if it is younger than the TTL.
func (c *MemoryCache) Get(kind weather.Kind, q weather.LocationQuery) (any, bool) {
	key := q.Key(kind)

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

// Put stores value for kind and q, superseding any previous entry.
func (c *MemoryCache) Put(kind weather.Kind, q weather.LocationQuery, value any) {
	key := q.Key(kind)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = entry{value: value, storedAt: c.now()}
}

// Len reports how many entries are held, stale ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
