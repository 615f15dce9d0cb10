package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/clock"
)

// MemoryCache is an in-process LRU cache with per-entry expiry. All access is
// serialised through one mutex; critical sections only touch the map and list.
type MemoryCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	clock      clock.Clock

	entries map[string]*entry
	order   *list.List // front = most recently used
}

type entry struct {
	key       string
	value     string
	expiresAt time.Time
	element   *list.Element
}

// NewMemoryCache creates a cache holding at most maxEntries values for ttl.
// Non-positive arguments take DefaultMaxEntries and DefaultTTL; a nil clock
// uses wall time.
func NewMemoryCache(maxEntries int, ttl time.Duration, clk clock.Clock) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clock.Real()
	}

	return &MemoryCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clk,
		entries:    make(map[string]*entry),
		order:      list.New(),
	}
}

// Get retrieves a value. Expired entries are removed lazily.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	key = NormalizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.clock.Now().After(e.expiresAt) {
		c.removeEntry(e)
		return "", false
	}

	c.order.MoveToFront(e.element)
	return e.value, true
}

// Set stores a value, evicting the least recently used entry when full.
func (c *MemoryCache) Set(_ context.Context, key, value string) {
	key = NormalizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.order.MoveToFront(e.element)
		return
	}

	for len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	e.element = c.order.PushFront(e)
	c.entries[key] = e
}

// Delete removes key. Idempotent.
func (c *MemoryCache) Delete(_ context.Context, key string) {
	key = NormalizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.removeEntry(e)
	}
}

// Len returns the number of entries held, including expired ones not yet
// collected.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest removes the least recently used entry.
// Must be called with lock held.
func (c *MemoryCache) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.removeEntry(oldest.Value.(*entry))
}

// removeEntry must be called with lock held.
func (c *MemoryCache) removeEntry(e *entry) {
	c.order.Remove(e.element)
	delete(c.entries, e.key)
}

var _ ResponseCache = (*MemoryCache)(nil)
