package catalog

import (
	"testing"
	"time"
)

func TestCacheGetSet(t *testing.T) {
	c := NewCache(true, 10, time.Hour)
	key := latestEpisodeKey(1)
	if _, ok := c.Get(key); ok {
		t.Error("should miss")
	}
	c.Set(key, Episode{Title: "test"})
	v, ok := c.Get(key)
	if !ok {
		t.Fatal("should hit")
	}
	if v.(Episode).Title != "test" {
		t.Error("wrong value")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(true, 10, 10*time.Millisecond)
	c.Set("k", 1)
	if _, ok := c.Get("k"); !ok {
		t.Error("should hit")
	}
	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("should have expired")
	}
	// expired entry is gone, not counted
	if c.Stats().Entries != 0 {
		t.Error("expired entry not removed")
	}
}

func TestCacheDisabled(t *testing.T) {
	c := NewCache(false, 10, time.Hour)
	c.Set("k", 1)
	if _, ok := c.Get("k"); ok {
		t.Error("disabled cache should never hit")
	}
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(true, 2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	if _, ok := c.Get("a"); ok {
		t.Error("oldest should have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b should remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should remain")
	}
	if c.Stats().Entries != 2 {
		t.Errorf("got %d entries\n", c.Stats().Entries)
	}
}

func TestCacheEvictionAfterInvalidate(t *testing.T) {
	// invalidation must release the key's eviction slot; a key set again
	// afterwards is the newest entry, not a candidate for eviction
	c := NewCache(true, 2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Invalidate("a")
	c.Set("a", 3)
	c.Set("c", 4)
	if _, ok := c.Get("b"); ok {
		t.Error("b is oldest, should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should remain")
	}
}

func TestCacheOrderTracksEntries(t *testing.T) {
	c := NewCache(true, 10, 10*time.Millisecond)
	for i := 0; i < 5; i++ {
		c.Set(latestEpisodeKey(uint(i)), Episode{})
	}
	c.Invalidate(latestEpisodeKey(0))
	time.Sleep(25 * time.Millisecond)
	c.Get(latestEpisodeKey(1))
	c.CleanupExpired()
	c.Set("k", 1)
	c.Set("k", 2)
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.order) != len(c.entries) {
		t.Errorf("order has %d keys, entries has %d\n", len(c.order), len(c.entries))
	}
}

func TestCacheOverwrite(t *testing.T) {
	// overwriting an existing key must not evict
	c := NewCache(true, 2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 3)
	v, ok := c.Get("a")
	if !ok || v.(int) != 3 {
		t.Error("overwrite lost")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b should remain")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache(true, 10, time.Hour)
	c.Set(latestEpisodeKey(1), Episode{})
	c.Set(episodeListKey(1, 10, 0), episodeList{})
	c.Set(episodeListKey(1, 10, 10), episodeList{})
	c.Set(latestEpisodeKey(2), Episode{})

	n := 0
	for _, prefix := range showKeyPrefixes(1) {
		n += c.Invalidate(prefix)
	}
	if n != 3 {
		t.Errorf("invalidated %d\n", n)
	}
	if _, ok := c.Get(latestEpisodeKey(2)); !ok {
		t.Error("other show should remain")
	}
}

func TestCacheCleanup(t *testing.T) {
	c := NewCache(true, 10, 10*time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(25 * time.Millisecond)
	c.Set("c", 3)
	n := c.CleanupExpired()
	if n != 2 {
		t.Errorf("cleaned %d\n", n)
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("live entry should remain")
	}
}

func TestCacheStats(t *testing.T) {
	c := NewCache(true, 10, time.Hour)
	c.Set(latestEpisodeKey(1), Episode{})
	c.Set(episodeListKey(1, 10, 0), episodeList{})
	stats := c.Stats()
	if !stats.Enabled {
		t.Error("should be enabled")
	}
	if stats.Entries != 2 || stats.Active != 2 || stats.Expired != 0 {
		t.Errorf("got %+v\n", stats)
	}
	if stats.LatestEpisodes != 1 || stats.EpisodeLists != 1 {
		t.Errorf("got %+v\n", stats)
	}
}
