// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package cache

import (
	"sync"
	"time"

	"github.com/tomtom215/darkwatch/internal/config"
	"github.com/tomtom215/darkwatch/internal/logging"
	"github.com/tomtom215/darkwatch/internal/metrics"
)

// Defaults and bounds.
const (
	MinTTL          = time.Second
	DefaultTTL      = 300 * time.Second
	DefaultMaxItems = 512
)

// Lookup outcomes recorded in metrics.
const (
	outcomeHit        = "hit"
	outcomeMiss       = "miss"
	outcomePersistHit = "persist_hit"
)

// Entry is a cached HTTP response body with its status code.
type Entry struct {
	Payload     []byte    `json:"payload"`
	Status      int       `json:"status"`
	ContentType string    `json:"content_type,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the entry is no longer servable at now.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// Persister is a second cache tier consulted on memory misses.
type Persister interface {
	Load(key string) (Entry, bool, error)
	Save(key string, entry Entry) error
	Delete(key string) error
}

// Cache is a bounded, thread-safe TTL cache of HTTP responses.
//
// When full, Set first drops every expired entry and then, if still
// full, the entry closest to expiry. Lookups never extend an entry's
// lifetime.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*item
	queue    expiryQueue
	maxItems int
	ttl      time.Duration
	persist  Persister
	now      func() time.Time

	stats Stats
}

// Stats tracks cache performance counters.
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Option customizes a Cache.
type Option func(*Cache)

// WithPersister attaches a second tier. Writes go through to it and
// memory misses fall back to it.
func WithPersister(p Persister) Option {
	return func(c *Cache) {
		c.persist = p
	}
}

// New creates a cache holding at most maxItems entries with default
// entry lifetime ttl. Non-positive values fall back to the defaults;
// ttl is raised to MinTTL.
func New(maxItems int, ttl time.Duration, opts ...Option) *Cache {
	if maxItems < 1 {
		maxItems = DefaultMaxItems
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if ttl < MinTTL {
		ttl = MinTTL
	}
	c := &Cache{
		entries:  make(map[string]*item),
		maxItems: maxItems,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a cache from the cache config section.
func NewFromConfig(cfg config.CacheConfig, opts ...Option) *Cache {
	return New(cfg.MaxItems, cfg.DefaultTTL(), opts...)
}

// TTL returns the default entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns a live entry for key. Expired entries are removed and
// reported as misses.
func (c *Cache) Get(key string) (Entry, bool) {
	now := c.now()

	c.mu.Lock()
	if it, ok := c.entries[key]; ok {
		if !it.entry.Expired(now) {
			entry := it.entry
			c.mu.Unlock()
			c.recordHit(outcomeHit)
			return entry, true
		}
		c.removeLocked(it)
		c.mu.Unlock()
		c.recordEvictions("expired", 1)
	} else {
		c.mu.Unlock()
	}

	if c.persist != nil {
		entry, ok, err := c.persist.Load(key)
		if err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("Persistent cache read failed")
		}
		if ok && !entry.Expired(now) {
			c.mu.Lock()
			c.insertLocked(key, entry, now)
			c.mu.Unlock()
			c.recordHit(outcomePersistHit)
			return entry, true
		}
	}

	c.recordMiss()
	return Entry{}, false
}

// Set stores payload and status under key for ttl. ttl <= 0 uses the
// default; shorter than MinTTL is raised to MinTTL.
func (c *Cache) Set(key string, payload []byte, status int, contentType string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	if ttl < MinTTL {
		ttl = MinTTL
	}
	now := c.now()
	entry := Entry{
		Payload:     append([]byte(nil), payload...),
		Status:      status,
		ContentType: contentType,
		ExpiresAt:   now.Add(ttl),
	}

	c.mu.Lock()
	c.insertLocked(key, entry, now)
	c.mu.Unlock()

	if c.persist != nil {
		if err := c.persist.Save(key, entry); err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("Persistent cache write failed")
		}
	}
}

// insertLocked adds or replaces key, making room first when full.
func (c *Cache) insertLocked(key string, entry Entry, now time.Time) {
	if it, ok := c.entries[key]; ok {
		it.entry = entry
		c.queue.update(it)
		return
	}

	if len(c.entries) >= c.maxItems {
		expired := c.queue.popExpired(now)
		for _, it := range expired {
			delete(c.entries, it.key)
		}
		c.recordEvictions("expired", len(expired))

		for len(c.entries) >= c.maxItems {
			oldest := c.queue.peek()
			if oldest == nil {
				break
			}
			c.removeLocked(oldest)
			c.recordEvictions("capacity", 1)
		}
	}

	it := &item{key: key, entry: entry}
	c.entries[key] = it
	c.queue.push(it)
	c.updateSizeLocked()
}

func (c *Cache) removeLocked(it *item) {
	c.queue.remove(it)
	delete(c.entries, it.key)
	c.updateSizeLocked()
}

func (c *Cache) updateSizeLocked() {
	n := len(c.entries)
	metrics.SetCacheEntries(n)
	c.stats.mu.Lock()
	c.stats.TotalKeys = int64(n)
	c.stats.mu.Unlock()
}

// Delete removes key from every tier.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	if it, ok := c.entries[key]; ok {
		c.removeLocked(it)
	}
	c.mu.Unlock()

	if c.persist != nil {
		if err := c.persist.Delete(key); err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("Persistent cache delete failed")
		}
	}
}

// Clear removes every in-memory entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]*item)
	c.queue.reset()
	c.updateSizeLocked()
	c.mu.Unlock()

	c.recordEvictions("cleared", n)
}

// Len returns the number of in-memory entries, expired ones included
// until they are pruned.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// PruneExpired removes expired in-memory entries and returns how many
// were dropped. The janitor calls it periodically.
func (c *Cache) PruneExpired() int {
	now := c.now()

	c.mu.Lock()
	expired := c.queue.popExpired(now)
	for _, it := range expired {
		delete(c.entries, it.key)
	}
	c.updateSizeLocked()
	c.mu.Unlock()

	c.recordEvictions("expired", len(expired))
	c.stats.mu.Lock()
	c.stats.LastCleanup = now
	c.stats.mu.Unlock()
	return len(expired)
}

// GetStats returns a snapshot of the cache counters.
func (c *Cache) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		Hits:        c.stats.Hits,
		Misses:      c.stats.Misses,
		Evictions:   c.stats.Evictions,
		TotalKeys:   c.stats.TotalKeys,
		LastCleanup: c.stats.LastCleanup,
	}
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (c *Cache) recordHit(outcome string) {
	metrics.RecordCacheLookup(outcome)
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
}

func (c *Cache) recordMiss() {
	metrics.RecordCacheLookup(outcomeMiss)
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}

func (c *Cache) recordEvictions(reason string, n int) {
	if n <= 0 {
		return
	}
	metrics.RecordCacheEviction(reason, n)
	c.stats.mu.Lock()
	c.stats.Evictions += int64(n)
	c.stats.mu.Unlock()
}
