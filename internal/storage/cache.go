package storage

import (
	"container/list"
	"sync"
	"time"
)

// CacheEntry represents a cached item with expiration
type CacheEntry struct {
	Key       string
	Value     interface{}
	ExpiresAt time.Time
}

// LRUCache is a thread-safe LRU cache with TTL support. The credential
// resolver uses one instance as its in-memory credential cache; it is
// constructed once per process and injected, never a package global.
type LRUCache struct {
	mu           sync.Mutex
	capacity     int
	ttl          time.Duration
	items        map[string]*list.Element
	evictionList *list.List
}

// NewLRUCache creates a new LRU cache
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	return &LRUCache{
		capacity:     capacity,
		ttl:          ttl,
		items:        make(map[string]*list.Element, capacity),
		evictionList: list.New(),
	}
}

// Get retrieves an item from the cache
func (c *LRUCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, found := c.items[key]
	if !found {
		return nil, false
	}

	entry := elem.Value.(*CacheEntry)
	if time.Now().After(entry.ExpiresAt) {
		c.removeElement(elem)
		return nil, false
	}

	c.evictionList.MoveToFront(elem)
	return entry.Value, true
}

// Set adds or updates an item in the cache
func (c *LRUCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)

	if elem, found := c.items[key]; found {
		c.evictionList.MoveToFront(elem)
		entry := elem.Value.(*CacheEntry)
		entry.Value = value
		entry.ExpiresAt = expiresAt
		return
	}

	elem := c.evictionList.PushFront(&CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: expiresAt,
	})
	c.items[key] = elem

	if c.evictionList.Len() > c.capacity {
		c.removeOldest()
	}
}

// Delete removes an item from the cache
func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, found := c.items[key]; found {
		c.removeElement(elem)
	}
}

// Clear removes all items from the cache; idempotent
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element, c.capacity)
	c.evictionList.Init()
}

// Len returns the current number of items in the cache
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.evictionList.Len()
}

// CleanupExpired removes all expired items (should be called periodically)
func (c *LRUCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0

	var next *list.Element
	for elem := c.evictionList.Back(); elem != nil; elem = next {
		next = elem.Prev()
		entry := elem.Value.(*CacheEntry)

		if now.After(entry.ExpiresAt) {
			c.removeElement(elem)
			removed++
		}
	}

	return removed
}

// removeOldest removes the oldest item from the cache
func (c *LRUCache) removeOldest() {
	if elem := c.evictionList.Back(); elem != nil {
		c.removeElement(elem)
	}
}

// removeElement removes a specific element from the cache
func (c *LRUCache) removeElement(elem *list.Element) {
	c.evictionList.Remove(elem)
	entry := elem.Value.(*CacheEntry)
	delete(c.items, entry.Key)
}
