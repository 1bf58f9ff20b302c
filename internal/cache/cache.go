// Package cache implements the Result Cache of spec.md §4.9: a bounded,
// TTL-expiring cache keyed on everything that can change an answer for
// the same query text. Grounded on the teacher's internal/embed/cached.go
// (LRU-wrapping pattern over hashicorp/golang-lru/v2), generalized here to
// use the expirable variant since cached results go stale on a clock, not
// just on eviction pressure.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Key identifies a cache entry. Two queries that differ in any field here
// are never conflated, per spec.md §4.9's key recipe.
type Key struct {
	IndexFingerprint string
	NormalizedQuery  string
	RerankerEnabled  bool
	TopK             int
	RetrieveM        int
	RerankN          int
	ComposerModelTag string
}

func (k Key) hash() string {
	raw := fmt.Sprintf("%s\x00%s\x00%v\x00%d\x00%d\x00%d\x00%s",
		k.IndexFingerprint, k.NormalizedQuery, k.RerankerEnabled, k.TopK, k.RetrieveM, k.RerankN, k.ComposerModelTag)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Cache is a bounded, TTL-expiring store of retrieval results keyed by Key.
type Cache[V any] struct {
	lru *expirable.LRU[string, V]
}

// New creates a cache holding up to maxEntries items, each expiring ttl
// after insertion, per spec.md §6 defaults (256 entries / 600s).
func New[V any](maxEntries int, ttl time.Duration) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if ttl <= 0 {
		ttl = 600 * time.Second
	}
	return &Cache[V]{lru: expirable.NewLRU[string, V](maxEntries, nil, ttl)}
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache[V]) Get(key Key) (V, bool) {
	return c.lru.Get(key.hash())
}

// Put stores value under key, evicting the least-recently-used entry if
// the cache is at capacity.
func (c *Cache[V]) Put(key Key, value V) {
	c.lru.Add(key.hash(), value)
}

// Len returns the number of live (unexpired) entries currently held.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}

// Purge empties the cache, used when the Chunk Store's fingerprint
// changes (corpus hot-swap), per spec.md §4.9.
func (c *Cache[V]) Purge() {
	c.lru.Purge()
}
