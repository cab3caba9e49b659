package memory

import (
	"time"

	"safebites-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// ContextCache keeps the rebuilt turn history per session so follow-up
// queries do not re-read and re-decode the chat log every time.
type ContextCache struct {
	cache *cache.Cache
}

func NewContextCache(ttl time.Duration) *ContextCache {
	return &ContextCache{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (c *ContextCache) Save(sessionID string, items []entity.ContextItem) {
	c.cache.Set(sessionID, items, cache.DefaultExpiration)
}

func (c *ContextCache) Get(sessionID string) ([]entity.ContextItem, bool) {
	if x, found := c.cache.Get(sessionID); found {
		return x.([]entity.ContextItem), true
	}
	return nil, false
}

func (c *ContextCache) Delete(sessionID string) {
	c.cache.Delete(sessionID)
}
