package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"heat-dispatch/internal/model"
)

type cacheEntry struct {
	periods   []model.MarketCondition
	expiresAt time.Time
}

// ResponseCache keeps market responses in memory for a fixed TTL.
// A nil *ResponseCache is valid and caches nothing.
type ResponseCache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewResponseCache returns a cache that sweeps expired entries in the
// background. A non-positive ttl disables caching and returns nil.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		return nil
	}
	c := &ResponseCache{
		store: make(map[string]cacheEntry),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go c.cleanup(sweepInterval(ttl))
	return c
}

func sweepInterval(ttl time.Duration) time.Duration {
	if ttl < 5*time.Minute {
		return ttl
	}
	return 5 * time.Minute
}

// Get returns a copy of the cached periods when present and not expired.
func (c *ResponseCache) Get(key string) ([]model.MarketCondition, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[key]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return append([]model.MarketCondition(nil), entry.periods...), true
}

func (c *ResponseCache) Set(key string, periods []model.MarketCondition) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = cacheEntry{
		periods:   append([]model.MarketCondition(nil), periods...),
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *ResponseCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *ResponseCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]cacheEntry)
}

// Close stops the background sweep. The cache stays readable.
func (c *ResponseCache) Close() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *ResponseCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *ResponseCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, key)
		}
	}
}

// CacheKey derives a stable key from the endpoint and query window.
func CacheKey(baseURL string, q MarketQuery) string {
	keyStr := fmt.Sprintf("%s:%s:%s:%s",
		baseURL,
		q.Area,
		q.From.UTC().Format(time.RFC3339),
		q.To.UTC().Format(time.RFC3339),
	)
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}
