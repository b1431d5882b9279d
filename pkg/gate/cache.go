package gate

import (
	"sync"
	"time"
)

// CacheKey identifies one decision: the navigation path, a cheap
// fingerprint of the auth cookies, and the invite token. Key
// construction is O(1); no session or profile data is part of the key.
type CacheKey struct {
	Path        string
	Fingerprint string
	Invite      string
}

type cacheEntry struct {
	decision   Decision
	computedAt time.Time
}

// DecisionCache is a bounded TTL cache of gate decisions. It only ever
// holds final decisions, never raw session or profile data, so the TTL
// is the exact upper bound on how long a role or subscription change can
// be masked.
//
// Safe for concurrent use. Eviction is opportunistic: expired entries
// are swept when the cache grows past capacity, then oldest-first until
// it fits. Exactness is not required since entries are time-bounded
// anyway.
type DecisionCache struct {
	mu       sync.Mutex
	entries  map[CacheKey]cacheEntry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// NewDecisionCache creates a cache with the given TTL and capacity.
func NewDecisionCache(ttl time.Duration, capacity int) *DecisionCache {
	return &DecisionCache{
		entries:  make(map[CacheKey]cacheEntry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the cached decision for a key if it is still fresh.
func (c *DecisionCache) Get(key CacheKey) (Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Decision{}, false
	}
	if c.now().Sub(entry.computedAt) >= c.ttl {
		delete(c.entries, key)
		return Decision{}, false
	}
	return entry.decision, true
}

// Set stores a decision. A concurrent Set for the same key is a benign
// race: both decisions were computed from live state, either may win.
func (c *DecisionCache) Set(key CacheKey, decision Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.capacity {
		c.evictLocked()
	}

	c.entries[key] = cacheEntry{
		decision:   decision,
		computedAt: c.now(),
	}
}

// Len returns the number of entries currently held.
func (c *DecisionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked sweeps expired entries, then removes oldest entries until
// the cache is under capacity. Caller holds the lock.
func (c *DecisionCache) evictLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.computedAt) >= c.ttl {
			delete(c.entries, key)
		}
	}

	for len(c.entries) >= c.capacity {
		var oldestKey CacheKey
		var oldestAt time.Time
		first := true
		for key, entry := range c.entries {
			if first || entry.computedAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = entry.computedAt
				first = false
			}
		}
		delete(c.entries, oldestKey)
	}
}
