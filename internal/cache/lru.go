// Package cache provides a thread-safe LRU cache with optional entry TTL.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Option configures an LRU.
type Option[K comparable, V any] func(*LRU[K, V])

// WithTTL expires entries ttl after they were last written. Zero disables
// expiry.
func WithTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(c *LRU[K, V]) { c.ttl = ttl }
}

// WithClock sets the time source used for TTL checks.
func WithClock[K comparable, V any](clk clockwork.Clock) Option[K, V] {
	return func(c *LRU[K, V]) { c.clock = clk }
}

// WithOnEvict registers a callback invoked for entries pushed out by
// capacity, expiry or Remove. It runs after the cache lock is released.
func WithOnEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *LRU[K, V]) { c.onEvict = fn }
}

// LRU is a fixed-capacity least-recently-used cache.
type LRU[K comparable, V any] struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	onEvict    func(K, V)

	mu      sync.Mutex
	entries map[K]*entry[K, V]
	head    *entry[K, V] // most recently used
	tail    *entry[K, V] // least recently used
}

type entry[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
	prev    *entry[K, V]
	next    *entry[K, V]
}

// New creates an LRU holding at most maxEntries entries. Values below 1 are
// treated as 1.
func New[K comparable, V any](maxEntries int, opts ...Option[K, V]) *LRU[K, V] {
	c := &LRU[K, V]{
		maxEntries: max(1, maxEntries),
		clock:      clockwork.NewRealClock(),
		entries:    make(map[K]*entry[K, V]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key and marks it most recently used. Expired
// entries are dropped and reported as missing.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	var zero V

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return zero, false
	}
	if c.expired(e) {
		c.unlink(e)
		c.mu.Unlock()
		c.evicted(e)
		return zero, false
	}
	c.moveToFront(e)
	value := e.value
	c.mu.Unlock()
	return value, true
}

// Put stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = c.expiry()
		c.moveToFront(e)
		c.mu.Unlock()
		return
	}

	e := &entry[K, V]{key: key, value: value, expires: c.expiry()}
	c.entries[key] = e
	c.addToFront(e)

	var victim *entry[K, V]
	if len(c.entries) > c.maxEntries {
		victim = c.tail
		c.unlink(victim)
	}
	c.mu.Unlock()

	if victim != nil {
		c.evicted(victim)
	}
}

// Remove deletes key. It reports whether the key was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		c.unlink(e)
	}
	c.mu.Unlock()

	if ok {
		c.evicted(e)
	}
	return ok
}

// Len returns the number of stored entries, including expired entries that
// have not been touched since they expired.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge removes every entry, invoking the eviction callback for each.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	var removed []*entry[K, V]
	for e := c.head; e != nil; e = e.next {
		removed = append(removed, e)
	}
	c.entries = make(map[K]*entry[K, V])
	c.head, c.tail = nil, nil
	c.mu.Unlock()

	for _, e := range removed {
		c.evicted(e)
	}
}

func (c *LRU[K, V]) expiry() time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return c.clock.Now().Add(c.ttl)
}

func (c *LRU[K, V]) expired(e *entry[K, V]) bool {
	return !e.expires.IsZero() && !c.clock.Now().Before(e.expires)
}

func (c *LRU[K, V]) evicted(e *entry[K, V]) {
	if c.onEvict != nil {
		c.onEvict(e.key, e.value)
	}
}

func (c *LRU[K, V]) moveToFront(e *entry[K, V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *LRU[K, V]) addToFront(e *entry[K, V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *LRU[K, V]) remove(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *LRU[K, V]) unlink(e *entry[K, V]) {
	delete(c.entries, e.key)
	c.remove(e)
}
