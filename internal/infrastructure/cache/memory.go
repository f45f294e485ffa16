package cache

import (
	"context"
	"sync"
	"time"

	"github.com/platewise/backend/internal/domain"
)

// cacheItem represents a single cached nutrient fact with expiration
type cacheItem struct {
	Fact       domain.NutrientFact
	Expiration time.Time
}

// MemoryCache is a thread-safe in-memory nutrient-fact cache with TTL support
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		data: make(map[string]cacheItem),
	}

	// Cleanup goroutine removes expired entries every 10 minutes
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached nutrient fact
func (c *MemoryCache) Get(ctx context.Context, key string) (*domain.NutrientFact, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.Expiration) {
		return nil, domain.ErrCacheMiss
	}

	// Copy so callers cannot mutate the cached value
	fact := item.Fact
	return &fact, nil
}

// Set stores a nutrient fact with TTL
func (c *MemoryCache) Set(ctx context.Context, key string, fact *domain.NutrientFact, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stored := *fact
	stored.CachedAt = time.Now()

	c.data[key] = cacheItem{
		Fact:       stored,
		Expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a cached fact
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, item := range c.data {
			if now.After(item.Expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem)
}
