package build

import (
	"sync"
	"time"
)

// Cache caches rendered post HTML keyed by content hash with LRU eviction.
type Cache struct {
	entries     map[string]*CacheEntry
	mutex       sync.RWMutex
	maxSize     int64
	currentSize int64
	ttl         time.Duration
	// LRU doubly-linked list with dummy head and tail
	head *CacheEntry
	tail *CacheEntry
}

// CacheEntry represents a cached render result
type CacheEntry struct {
	Key        string
	Value      []byte
	CreatedAt  time.Time
	AccessedAt time.Time
	Size       int64
	prev       *CacheEntry
	next       *CacheEntry
}

// NewCache creates a cache bounded by maxSize bytes with the given TTL.
func NewCache(maxSize int64, ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
	}
	c.head = &CacheEntry{}
	c.tail = &CacheEntry{}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the cached value for key, or nil and false on miss or expiry.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if c.ttl > 0 && time.Since(entry.CreatedAt) > c.ttl {
		c.removeLocked(entry)
		return nil, false
	}

	entry.AccessedAt = time.Now()
	c.moveToFront(entry)
	return entry.Value, true
}

// Set stores a value under key, evicting least recently used entries when the
// size bound is exceeded.
func (c *Cache) Set(key string, value []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if existing, ok := c.entries[key]; ok {
		c.removeLocked(existing)
	}

	entry := &CacheEntry{
		Key:        key,
		Value:      value,
		CreatedAt:  time.Now(),
		AccessedAt: time.Now(),
		Size:       int64(len(value)),
	}

	c.entries[key] = entry
	c.currentSize += entry.Size
	c.insertFront(entry)

	for c.currentSize > c.maxSize && c.tail.prev != c.head {
		c.removeLocked(c.tail.prev)
	}
}

// Size returns the current byte size of cached values.
func (c *Cache) Size() int64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.currentSize
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// Clear drops all cached entries.
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]*CacheEntry)
	c.currentSize = 0
	c.head.next = c.tail
	c.tail.prev = c.head
}

func (c *Cache) insertFront(entry *CacheEntry) {
	entry.next = c.head.next
	entry.prev = c.head
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *Cache) moveToFront(entry *CacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.insertFront(entry)
}

func (c *Cache) removeLocked(entry *CacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.entries, entry.Key)
	c.currentSize -= entry.Size
}
