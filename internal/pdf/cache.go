package pdf

import (
	"sync"
)

// LRUCache is a thread-safe least recently used cache
type LRUCache[V any] struct {
	mutex    sync.Mutex
	capacity int
	items    map[string]*cacheNode[V]
	head     *cacheNode[V] // most recently used
	tail     *cacheNode[V] // least recently used
	hits     int64
	misses   int64
}

type cacheNode[V any] struct {
	key   string
	value V
	prev  *cacheNode[V]
	next  *cacheNode[V]
}

// CacheStats describes cache usage
type CacheStats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate_percent"`
	Size     int     `json:"current_size"`
	Capacity int     `json:"max_capacity"`
}

// NewLRUCache creates a cache holding at most capacity entries
func NewLRUCache[V any](capacity int) *LRUCache[V] {
	if capacity <= 0 {
		capacity = 16
	}

	c := &LRUCache[V]{
		capacity: capacity,
		items:    make(map[string]*cacheNode[V]),
		head:     &cacheNode[V]{},
		tail:     &cacheNode[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the value for key and marks it as recently used
func (c *LRUCache[V]) Get(key string) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if node, ok := c.items[key]; ok {
		c.moveToFront(node)
		c.hits++
		return node.value, true
	}

	c.misses++
	var zero V
	return zero, false
}

// Put adds or replaces the value for key, evicting the least recently used
// entry when full
func (c *LRUCache[V]) Put(key string, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if node, ok := c.items[key]; ok {
		node.value = value
		c.moveToFront(node)
		return
	}

	node := &cacheNode[V]{key: key, value: value}
	c.addToFront(node)
	c.items[key] = node

	if len(c.items) > c.capacity {
		c.evictLRU()
	}
}

// Remove deletes key
func (c *LRUCache[V]) Remove(key string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	node, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeNode(node)
	delete(c.items, key)
	return true
}

// Clear drops every entry and resets the counters
func (c *LRUCache[V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[string]*cacheNode[V])
	c.head.next = c.tail
	c.tail.prev = c.head
	c.hits = 0
	c.misses = 0
}

// Len returns the number of entries
func (c *LRUCache[V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}

// Keys returns the keys from most to least recently used
func (c *LRUCache[V]) Keys() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	keys := make([]string, 0, len(c.items))
	for n := c.head.next; n != c.tail; n = n.next {
		keys = append(keys, n.key)
	}
	return keys
}

func (c *LRUCache[V]) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	total := c.hits + c.misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(c.hits) / float64(total) * 100
	}

	return CacheStats{
		Hits:     c.hits,
		Misses:   c.misses,
		HitRate:  hitRate,
		Size:     len(c.items),
		Capacity: c.capacity,
	}
}

func (c *LRUCache[V]) moveToFront(node *cacheNode[V]) {
	c.removeNode(node)
	c.addToFront(node)
}

func (c *LRUCache[V]) addToFront(node *cacheNode[V]) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

func (c *LRUCache[V]) removeNode(node *cacheNode[V]) {
	node.prev.next = node.next
	node.next.prev = node.prev
}

func (c *LRUCache[V]) evictLRU() {
	lru := c.tail.prev
	if lru != c.head {
		c.removeNode(lru)
		delete(c.items, lru.key)
	}
}
