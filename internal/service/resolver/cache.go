package resolver

import (
	"sync"
	"time"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

type cacheEntry struct {
	meta      domain.WorldMetadata
	expiresAt time.Time
}

// metadataCache is a small TTL map. Expired entries are dropped lazily on
// read; the working set is bounded by the number of distinct worlds seen
// within one TTL window, so no eviction loop is needed.
type metadataCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newMetadataCache(ttl time.Duration) *metadataCache {
	return &metadataCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *metadataCache) get(worldID string) (domain.WorldMetadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[worldID]
	if !ok {
		return domain.WorldMetadata{}, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, worldID)
		return domain.WorldMetadata{}, false
	}
	return entry.meta, true
}

func (c *metadataCache) set(meta domain.WorldMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[meta.WorldID] = cacheEntry{
		meta:      meta,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *metadataCache) invalidate(worldID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, worldID)
}
