package screening

import (
	"context"
	"sync"
	"time"

	"regula/pkg/platform/sentinel"
	"regula/pkg/requestcontext"
)

// Cache stores screening results per normalized party name with TTL
// expiration. A miss, expired entry included, returns sentinel.ErrNotFound.
type Cache interface {
	Find(ctx context.Context, key string) (*Result, error)
	Save(ctx context.Context, key string, result *Result) error
}

type cachedResult struct {
	result   Result
	storedAt time.Time
}

// InMemoryCache is a process-local Cache with TTL expiration.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cachedResult
	ttl     time.Duration
}

// NewInMemoryCache creates an in-memory cache with the specified TTL.
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[string]cachedResult),
		ttl:     ttl,
	}
}

func (c *InMemoryCache) Find(ctx context.Context, key string) (*Result, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cached, ok := c.entries[key]; ok {
		if requestcontext.Now(ctx).Sub(cached.storedAt) < c.ttl {
			result := cached.result
			return &result, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (c *InMemoryCache) Save(ctx context.Context, key string, result *Result) error {
	if result == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cachedResult{result: *result, storedAt: requestcontext.Now(ctx)}
	return nil
}
