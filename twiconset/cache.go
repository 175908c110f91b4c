package twiconset

import "sync"

// Cache holds icon sets loaded from string sources, keyed by the exact source
// string (not the prefix, "mdi" and "./mdi.json" are separate entries).
// Entries are never evicted, so a long running process keeps serving the data
// it read first even if the file changes on disk.
type Cache struct {
	rwmu sync.RWMutex
	m    map[string]*IconSet
}

// DefaultCache is used by loaders that were not given a cache.  It lives for
// the lifetime of the process.
var DefaultCache = NewCache()

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{m: make(map[string]*IconSet)}
}

// Get returns the icon set cached for key.
func (c *Cache) Get(key string) (*IconSet, bool) {
	c.rwmu.RLock()
	defer c.rwmu.RUnlock()
	s, ok := c.m[key]
	return s, ok
}

// Add stores s under key unless key already has an entry, and returns the
// entry that is now cached.
func (c *Cache) Add(key string, s *IconSet) *IconSet {
	c.rwmu.Lock()
	defer c.rwmu.Unlock()
	if prev, ok := c.m[key]; ok {
		return prev
	}
	c.m[key] = s
	return s
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.rwmu.RLock()
	defer c.rwmu.RUnlock()
	return len(c.m)
}
