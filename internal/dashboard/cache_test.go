package dashboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/moodmeter/moodmeter/internal/mood"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCacheKeyHistoricalRangesArePermanent(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 14, 23, 0, 0, time.UTC)
	start, end := date(2024, 2, 1), date(2024, 2, 29)

	key1, permanent := cacheKey("mood", -100, mood.Day, start, end, now)
	if !permanent {
		t.Fatal("range ending before today must produce a permanent key")
	}

	// The same query hours later maps to the same key.
	key2, _ := cacheKey("mood", -100, mood.Day, start, end, now.Add(6*time.Hour))
	if key1 != key2 {
		t.Errorf("historical key changed over time: %q vs %q", key1, key2)
	}
}

func TestCacheKeyLiveRangesRotate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)
	start, end := date(2024, 3, 1), date(2024, 3, 15)

	key1, permanent := cacheKey("mood", -100, mood.Day, start, end, now)
	if permanent {
		t.Fatal("range ending today must not produce a permanent key")
	}

	key2, _ := cacheKey("mood", -100, mood.Day, start, end, now.Add(time.Minute))
	if key1 != key2 {
		t.Errorf("key rotated within the window: %q vs %q", key1, key2)
	}

	key3, _ := cacheKey("mood", -100, mood.Day, start, end, now.Add(keyWindow))
	if key1 == key3 {
		t.Errorf("key did not rotate after the window elapsed: %q", key3)
	}
}

func TestCacheKeyDistinguishesQueries(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)
	start, end := date(2024, 2, 1), date(2024, 2, 29)

	base, _ := cacheKey("mood", -100, mood.Day, start, end, now)

	variants := []string{}
	if k, _ := cacheKey("counts", -100, mood.Day, start, end, now); k != base {
		variants = append(variants, k)
	}
	if k, _ := cacheKey("mood", -200, mood.Day, start, end, now); k != base {
		variants = append(variants, k)
	}
	if k, _ := cacheKey("mood", -100, mood.Week, start, end, now); k != base {
		variants = append(variants, k)
	}
	if k, _ := cacheKey("mood", -100, mood.Day, start, date(2024, 2, 28), now); k != base {
		variants = append(variants, k)
	}

	if len(variants) != 4 {
		t.Errorf("expected all query variants to produce distinct keys, got %d distinct", len(variants))
	}
}

func TestSeriesCacheExpiry(t *testing.T) {
	t.Parallel()

	c := newSeriesCache()

	c.Set("rotating", 1, 10*time.Millisecond)
	c.Set("permanent", 2, 0)

	if v, ok := c.Get("rotating"); !ok || v != 1 {
		t.Errorf("fresh entry missing, got %v, %v", v, ok)
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("rotating"); ok {
		t.Error("expired entry still served")
	}
	if v, ok := c.Get("permanent"); !ok || v != 2 {
		t.Errorf("permanent entry lost, got %v, %v", v, ok)
	}
}

func TestSeriesCacheReclaimsRotatedEntries(t *testing.T) {
	t.Parallel()

	c := newSeriesCache()

	// Rotated keys are never requested again, so Get alone would let these
	// accumulate forever.
	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprintf("live_data_mood_%d_1700000000", i), i, time.Nanosecond)
	}
	c.Set("permanent", "kept", 0)

	time.Sleep(time.Millisecond)
	c.Set("live_data_mood_0_1700000300", "fresh", time.Minute)

	c.mu.Lock()
	size := len(c.entries)
	c.mu.Unlock()

	if size != 2 {
		t.Errorf("cache holds %d entries after sweep, want 2 (permanent + fresh)", size)
	}
	if v, ok := c.Get("permanent"); !ok || v != "kept" {
		t.Errorf("permanent entry lost during sweep, got %v, %v", v, ok)
	}
	if v, ok := c.Get("live_data_mood_0_1700000300"); !ok || v != "fresh" {
		t.Errorf("fresh entry lost during sweep, got %v, %v", v, ok)
	}
}

func TestSeriesCacheMiss(t *testing.T) {
	t.Parallel()

	c := newSeriesCache()
	if _, ok := c.Get("absent"); ok {
		t.Error("cache returned a value for an unknown key")
	}
}
