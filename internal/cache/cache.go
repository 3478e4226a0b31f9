// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

// Package cache provides the in-memory response cache: a thread-safe
// key-value store with per-entry TTL and an explicit persistent mode
// for entries that live until invalidated.
//
// This layer caches whole endpoint outputs keyed by request shape. It is
// distinct from the Badger-backed OMDB detail cache in package enrich;
// the two have structurally different invalidation lifetimes and are
// kept separate on purpose.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Entry represents a cached item. A zero ExpiresAt marks a persistent
// entry that never expires and survives cleanup sweeps.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// persistent reports whether the entry is exempt from expiry.
func (e Entry) persistent() bool {
	return e.ExpiresAt.IsZero()
}

// expired reports whether the entry is past its TTL at the given time.
func (e Entry) expired(now time.Time) bool {
	return !e.persistent() && now.After(e.ExpiresAt)
}

// Cache is a thread-safe in-memory cache with TTL support.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration

	statsMu sync.Mutex
	stats   Stats
}

// Stats is a snapshot of the cache performance counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// New creates a cache with the given default TTL for entries stored via
// Set. A background goroutine sweeps expired entries every 5 minutes;
// persistent entries are never swept.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		stats:   Stats{LastCleanup: time.Now()},
	}

	go c.cleanupLoop()

	return c
}

// Get retrieves a value by key. Expired entries are removed on access
// and counted as misses.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if entry.expired(time.Now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.recordMiss()
		c.recordEviction()
		return nil, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores a value with the default TTL configured at creation.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL. Concurrent writers to the
// same key race on the TTL; last writer wins.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.store(key, Entry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// SetPersistent stores a value that never expires. The entry stays until
// Delete or Clear explicitly invalidates it.
func (c *Cache) SetPersistent(key string, value interface{}) {
	c.store(key, Entry{Data: value})
}

func (c *Cache) store(key string, entry Entry) {
	c.mu.Lock()
	c.entries[key] = entry
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.TotalKeys = total
	c.statsMu.Unlock()
}

// Delete removes a specific entry. Safe to call on absent keys.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	c.recordEviction()
}

// Clear removes all entries, including persistent ones. Called after
// ingestion completes so clients see fresh aggregates.
func (c *Cache) Clear() {
	c.mu.Lock()
	evictions := int64(len(c.entries))
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = 0
	c.statsMu.Unlock()
}

// GetStats returns a snapshot of the cache counters.
func (c *Cache) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	return c.stats
}

// HitRate returns the cache hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// cleanupLoop periodically removes expired entries.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

// cleanup removes all expired entries. Persistent entries are skipped.
func (c *Cache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	evictions := int64(0)
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			evictions++
		}
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = total
	c.stats.LastCleanup = now
	c.statsMu.Unlock()
}

func (c *Cache) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
}

func (c *Cache) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
}

func (c *Cache) recordEviction() {
	c.statsMu.Lock()
	c.stats.Evictions++
	c.statsMu.Unlock()
}

// GenerateKey creates a cache key from a method name and parameters.
// Parameters are serialized to JSON and hashed for a compact key.
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Fallback to simple string key
		return fmt.Sprintf("%s:%v", method, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}

// RequestKey creates a response-cache key from the request shape:
// HTTP method, path, and raw query string.
func RequestKey(method, path, rawQuery string) string {
	return fmt.Sprintf("%s:%s?%s", method, path, rawQuery)
}
