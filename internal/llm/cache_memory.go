package llm

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	resp    Response
	expires time.Time
}

// MemoryCache is the default shared in-memory cache named in §5 ("simple
// in-memory cache keyed on prompt+system+temperature").
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryCache builds an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

var _ Cache = (*MemoryCache)(nil)

func (c *MemoryCache) Get(_ context.Context, key string) (Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Response{}, false
	}

	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(c.entries, key)
		return Response{}, false
	}

	return e.resp, true
}

func (c *MemoryCache) Set(_ context.Context, key string, resp Response, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	c.entries[key] = memoryEntry{resp: resp, expires: expires}
}
