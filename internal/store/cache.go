package store

import (
	"sync"
	"time"
)

// DefaultCacheTTL bounds how stale a remote read may be. Writes from this
// process refresh the entry immediately; writes from a peer process stay
// invisible for up to one TTL window.
const DefaultCacheTTL = time.Second

type snapshotEntry struct {
	records []Record
	at      time.Time
}

// snapshotCache memoizes the last decoded record list per collection in
// front of a remote backend. Entries are never size-evicted; they are only
// superseded by fresher reads/writes or dropped explicitly.
type snapshotCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]snapshotEntry
	metrics *cacheMetrics
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &snapshotCache{ttl: ttl, entries: make(map[string]snapshotEntry)}
}

// get returns the cached snapshot if it is still fresh.
func (c *snapshotCache) get(name string) ([]Record, bool) {
	c.mu.RLock()
	entry, ok := c.entries[name]
	c.mu.RUnlock()

	if !ok || time.Since(entry.at) >= c.ttl {
		if c.metrics != nil {
			c.metrics.recordMiss()
		}
		return nil, false
	}
	if c.metrics != nil {
		c.metrics.recordHit()
	}
	return cloneRecords(entry.records), true
}

// peek returns the last snapshot regardless of age. This is the degraded
// read used by CachedSnapshot.
func (c *snapshotCache) peek(name string) ([]Record, bool) {
	c.mu.RLock()
	entry, ok := c.entries[name]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return cloneRecords(entry.records), true
}

func (c *snapshotCache) set(name string, records []Record) {
	c.mu.Lock()
	c.entries[name] = snapshotEntry{records: cloneRecords(records), at: time.Now()}
	size := len(c.entries)
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.updateSize(size)
	}
}

func (c *snapshotCache) invalidate(name string) {
	c.mu.Lock()
	delete(c.entries, name)
	size := len(c.entries)
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.updateSize(size)
	}
}
