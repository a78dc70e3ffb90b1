// Package cache keeps synthesized SQL keyed by a hash of the normalized
// question, so repeat questions skip the synthesis stages entirely.
// Eviction is lazy: expired entries are removed when looked up, never by a
// background sweeper.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

type entry struct {
	sql     string
	created time.Time
}

// Cache is a TTL-bounded in-memory store of question→SQL. Safe for
// concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration

	// now is swappable in tests
	now func() time.Time
}

// Stats is a snapshot of cache occupancy.
type Stats struct {
	Entries    int
	TTLSeconds int
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// key normalizes the question (lowercase, trimmed) and hashes it, so
// "Show demands" and "  show demands  " share one slot.
func key(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached SQL for question, or "" and false on a miss.
// An expired entry is deleted and reported as a miss.
func (c *Cache) Get(question string) (string, bool) {
	k := key(question)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.created) >= c.ttl {
		delete(c.entries, k)
		return "", false
	}
	return e.sql, true
}

// Set stores sql for question, overwriting any previous entry.
func (c *Cache) Set(question, sql string) {
	k := key(question)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = entry{sql: sql, created: c.now()}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Stats reports current occupancy. Expired-but-unvisited entries count
// until a Get touches them.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:    len(c.entries),
		TTLSeconds: int(c.ttl.Seconds()),
	}
}
