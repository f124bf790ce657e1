package blockchain

import (
	"sync"
	"time"
)

// ResourceCache mirrors ledger state per resource class with a short TTL.
// Each class holds one payload (a whole normalized collection) that is
// replaced wholesale on refresh, so readers never observe a partially-updated
// collection. The clock is injectable for deterministic tests.
type ResourceCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	now     func() time.Time
}

// cacheEntry represents one resource class with its refresh stamp and TTL.
type cacheEntry struct {
	payload       interface{}
	lastRefreshed time.Time
	ttl           time.Duration
}

// NewResourceCache creates an empty cache. A nil clock uses time.Now.
func NewResourceCache(now func() time.Time) *ResourceCache {
	if now == nil {
		now = time.Now
	}
	return &ResourceCache{
		entries: make(map[string]*cacheEntry),
		now:     now,
	}
}

// Register declares a resource class and its TTL. Classes refresh
// independently; there is no cross-class locking.
func (c *ResourceCache) Register(class string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[class] = &cacheEntry{ttl: ttl}
}

// Get returns the cached payload, whether it is still fresh, and whether any
// payload has ever been stored for the class.
func (c *ResourceCache) Get(class string) (interface{}, bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[class]
	if !ok || entry.payload == nil {
		return nil, false, false
	}
	fresh := c.now().Sub(entry.lastRefreshed) < entry.ttl
	return entry.payload, fresh, true
}

// Set replaces the class payload atomically and stamps it as refreshed now.
func (c *ResourceCache) Set(class string, payload interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[class]
	if !ok {
		entry = &cacheEntry{ttl: defaultTTL}
		c.entries[class] = entry
	}
	entry.payload = payload
	entry.lastRefreshed = c.now()
}

// Invalidate forces the next Get to report the class stale without discarding
// the payload, which keeps the serve-stale-while-refreshing fallback working.
func (c *ResourceCache) Invalidate(class string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[class]; ok {
		entry.lastRefreshed = time.Time{}
	}
}

// InvalidateAll marks every class stale.
func (c *ResourceCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.entries {
		entry.lastRefreshed = time.Time{}
	}
}

const defaultTTL = 5 * time.Second
