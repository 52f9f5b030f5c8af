// Package cache holds fetched documents so repeated conversions of the same
// URL skip the network.
package cache

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Entry is a cached response body.
type Entry struct {
	Data        []byte
	ContentType string
}

// DocCache provides thread-safe LRU caching of fetched documents keyed by URL.
// Entries expire ttl after they were added.
type DocCache struct {
	cache *expirable.LRU[string, Entry]
}

// NewDocCache creates a cache holding at most maxItems documents for ttl
// each. A ttl <= 0 keeps entries until they are evicted.
func NewDocCache(maxItems int, ttl time.Duration) (*DocCache, error) {
	if maxItems < 1 {
		return nil, fmt.Errorf("cache size must be positive, got %d", maxItems)
	}
	return &DocCache{cache: expirable.NewLRU[string, Entry](maxItems, nil, ttl)}, nil
}

// Get retrieves a document by URL.
func (c *DocCache) Get(url string) (Entry, bool) {
	return c.cache.Get(url)
}

// Put adds or updates a document.
func (c *DocCache) Put(url string, e Entry) {
	c.cache.Add(url, e)
}

// Len returns the current number of items in the cache.
func (c *DocCache) Len() int {
	return c.cache.Len()
}
