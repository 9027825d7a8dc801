package cache

import (
	"sync"
	"time"

	"ai-persona-advisors/backend/pkg/config"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

func (e entry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// Cache is a thread-safe in-memory TTL cache sized and tuned from the
// application configuration.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	maxItems   int
}

// NewCache builds a cache from the Cache section of the loaded config and
// starts the background purge loop.
func NewCache() *Cache {
	cfg := config.Get()

	c := &Cache{
		entries:    make(map[string]entry),
		defaultTTL: cfg.Cache.TTL,
		maxItems:   cfg.Cache.MaxSize,
	}

	if cfg.Cache.PurgeWindow > 0 {
		go c.purgeLoop(cfg.Cache.PurgeWindow)
	}

	return c
}

// Set stores a value under key with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithExpiration(key, value, c.defaultTTL)
}

// SetWithExpiration stores a value with an explicit TTL. A non-positive TTL
// means the entry never expires.
func (c *Cache) SetWithExpiration(key string, value interface{}, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxItems > 0 && len(c.entries) >= c.maxItems {
		if _, exists := c.entries[key]; !exists {
			c.evictSoonest()
		}
	}

	c.entries[key] = entry{value: value, expiresAt: expiresAt}
}

// Get returns the live value stored under key.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, found := c.entries[key]
	if !found || e.expired() {
		return nil, false
	}
	return e.value, true
}

// Delete removes the entry under key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

func (c *Cache) purgeLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for k, e := range c.entries {
			if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		c.mu.Unlock()
	}
}

// evictSoonest drops the entry closest to expiry to make room. Called with
// the write lock held.
func (c *Cache) evictSoonest() {
	var victim string
	var victimExpiry time.Time
	first := true

	for k, e := range c.entries {
		if first || e.expiresAt.Before(victimExpiry) {
			victim = k
			victimExpiry = e.expiresAt
			first = false
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}
