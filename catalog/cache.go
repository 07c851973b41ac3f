// Copyright (C) 2025 The Podkeep Authors.
//
// This file is part of Podkeep.
//
// Podkeep is free software: you can redistribute it and/or modify it under the
// terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Podkeep is distributed in the hope that it will be useful, but WITHOUT ANY
// WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS
// FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License for
// more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Podkeep.  If not, see <https://www.gnu.org/licenses/>.

package catalog

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache is the process-local volatile tier. Entries expire after a fixed
// TTL and the entry count is bounded; at capacity the oldest-inserted entry
// is evicted. Absence is a miss, never an error. The lock is held only for
// map operations, never across store or network calls.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	order      []string // insertion order for eviction
	enabled    bool
	maxEntries int
	ttl        time.Duration
}

type cacheEntry struct {
	value   interface{}
	expires time.Time
	created time.Time
}

type CacheStats struct {
	Enabled        bool          `json:"enabled"`
	Entries        int           `json:"entries"`
	Expired        int           `json:"expired"`
	Active         int           `json:"active"`
	LatestEpisodes int           `json:"latestEpisodes"`
	EpisodeLists   int           `json:"episodeLists"`
	MaxEntries     int           `json:"maxEntries"`
	TTL            time.Duration `json:"ttl"`
}

func NewCache(enabled bool, maxEntries int, ttl time.Duration) *Cache {
	return &Cache{
		entries:    make(map[string]*cacheEntry),
		enabled:    enabled,
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

func (c *Cache) Enabled() bool {
	return c.enabled
}

func latestEpisodeKey(showID uint) string {
	return fmt.Sprintf("latest_episode:%d", showID)
}

func episodeListKey(showID uint, limit, offset int) string {
	return fmt.Sprintf("episodes_list:%d:%d:%d", showID, limit, offset)
}

func showKeyPrefixes(showID uint) []string {
	return []string{
		fmt.Sprintf("latest_episode:%d", showID),
		fmt.Sprintf("episodes_list:%d:", showID),
	}
}

// Get returns a miss once an entry expires, removing it as a side effect.
func (c *Cache) Get(key string) (interface{}, bool) {
	if !c.enabled {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !time.Now().Before(e.expires) {
		c.remove(key)
		return nil, false
	}
	return e.value, true
}

// remove deletes an entry and its insertion-order slot. Every delete path
// goes through here so order only ever holds live keys; a removed key that
// is set again re-enters at the back of the insertion order. Callers hold
// c.mu.
func (c *Cache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Set stores value with the configured TTL. A no-op when caching is
// disabled; all reads then pass through to the persisted store.
func (c *Cache) Set(key string, value interface{}) {
	if !c.enabled {
		return
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		if len(c.entries) >= c.maxEntries {
			c.evictOldest()
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = &cacheEntry{
		value:   value,
		expires: now.Add(c.ttl),
		created: now,
	}
}

// evictOldest removes the oldest-inserted entry. Approximate LRU via
// insertion order, not access order; the workload is read-through with
// short TTLs, not working-set sensitive. Callers hold c.mu.
func (c *Cache) evictOldest() {
	if len(c.order) > 0 {
		c.remove(c.order[0])
	}
}

// Invalidate removes all entries whose key starts with prefix and returns
// the number removed.
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.remove(key)
			n++
		}
	}
	return n
}

func (c *Cache) InvalidateAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]*cacheEntry)
	c.order = nil
	return n
}

// CleanupExpired removes expired entries and returns the number removed.
func (c *Cache) CleanupExpired() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, e := range c.entries {
		if !now.Before(e.expires) {
			c.remove(key)
			n++
		}
	}
	return n
}

func (c *Cache) Stats() CacheStats {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := CacheStats{
		Enabled:    c.enabled,
		Entries:    len(c.entries),
		MaxEntries: c.maxEntries,
		TTL:        c.ttl,
	}
	for key, e := range c.entries {
		if !now.Before(e.expires) {
			stats.Expired++
		}
		if strings.HasPrefix(key, "latest_episode:") {
			stats.LatestEpisodes++
		} else if strings.HasPrefix(key, "episodes_list:") {
			stats.EpisodeLists++
		}
	}
	stats.Active = stats.Entries - stats.Expired
	return stats
}
