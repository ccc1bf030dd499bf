package repository

import (
	"strings"
	"sync"

	"fantamorto/internal/models"
)

// LookupCache provides thread-safe in-memory cache for resolved lookups
type LookupCache struct {
	mu    sync.RWMutex
	cache map[string][]*models.Athlet // normalized query -> candidates
}

// NewLookupCache creates a new lookup cache instance
func NewLookupCache() *LookupCache {
	return &LookupCache{
		cache: make(map[string][]*models.Athlet),
	}
}

// NormalizeQuery folds case and inner whitespace so equivalent queries share an entry.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// Get retrieves copies of the cached candidates for query
func (c *LookupCache) Get(query string) ([]*models.Athlet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	athlets, found := c.cache[NormalizeQuery(query)]
	if !found {
		return nil, false
	}
	return cloneAll(athlets), true
}

// Set stores copies of the candidates for query
func (c *LookupCache) Set(query string, athlets []*models.Athlet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[NormalizeQuery(query)] = cloneAll(athlets)
}

// Clear removes all entries from cache
func (c *LookupCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string][]*models.Athlet)
}

// Size returns the number of cached entries
func (c *LookupCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func cloneAll(athlets []*models.Athlet) []*models.Athlet {
	out := make([]*models.Athlet, len(athlets))
	for i, a := range athlets {
		out[i] = a.Clone()
	}
	return out
}
