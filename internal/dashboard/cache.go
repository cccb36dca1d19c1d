package dashboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/moodmeter/moodmeter/internal/mood"
)

// keyWindow is how often cache keys for queries touching today rotate.
// History never changes, so ranges ending before today get a permanent key.
const keyWindow = 5 * time.Minute

// cacheKey builds the cache key for a series query and reports whether it is
// permanent. Ranges whose end date lies strictly before today are immutable
// and share one permanent key; anything touching today is keyed to a
// rotating window so fresh messages become visible within keyWindow.
func cacheKey(series string, chatID int64, g mood.Granularity, start, end, now time.Time) (string, bool) {
	base := fmt.Sprintf("%s_%d_%s_%s_%s",
		series, chatID, g, start.Format("2006-01-02"), end.Format("2006-01-02"))

	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if endDay.Before(today) {
		return "historical_data_" + base, true
	}
	return fmt.Sprintf("live_data_%s_%d", base, now.Truncate(keyWindow).Unix()), false
}

type cacheEntry struct {
	value   any
	expires time.Time // zero means never
}

// seriesCache is a small in-process TTL cache for series responses. Entries
// under rotating keys expire; entries under permanent keys do not. Expired
// entries are reclaimed on Set: a rotated key is never requested again, so
// Get alone cannot evict it.
type seriesCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func newSeriesCache() *seriesCache {
	return &seriesCache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached value for key, if present and not expired.
func (c *seriesCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

// Set stores value under key and sweeps out every expired entry. A
// non-positive ttl stores the value permanently.
func (c *seriesCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.entries {
		if !e.expires.IsZero() && now.After(e.expires) {
			delete(c.entries, k)
		}
	}

	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.expires = now.Add(ttl)
	}
	c.entries[key] = entry
}
