package energymix

import (
	"context"
	"sync"
	"time"
)

// CachedProvider memoizes each zone's mix for a fixed TTL.
type CachedProvider struct {
	next Provider
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	mix     Mix
	expires time.Time
}

func NewCachedProvider(next Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachedProvider) Latest(ctx context.Context, zone string) (*Mix, error) {
	c.mu.Lock()
	if e, ok := c.entries[zone]; ok && c.now().Before(e.expires) {
		c.mu.Unlock()
		mix := e.mix
		return &mix, nil
	}
	c.mu.Unlock()

	mix, err := c.next.Latest(ctx, zone)
	if err != nil {
		return nil, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.entries[zone] = cacheEntry{mix: *mix, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
	}
	return mix, nil
}
