package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bbernstein/tidetimes/internal/config"
	"github.com/bbernstein/tidetimes/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

// FeedCacheEntry wraps decoded feed readings with their expiry
type FeedCacheEntry struct {
	Readings  []models.RawReading
	ExpiresAt time.Time
}

// FeedCache keeps recently fetched feeds in memory so repeated lookups for
// the same station and range skip NOAA.
type FeedCache struct {
	lru    *lru.Cache[string, *FeedCacheEntry]
	ttl    time.Duration
	clock  clock
	mu     sync.Mutex
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewFeedCache(cfg *config.CacheConfig) (*FeedCache, error) {
	lruCache, err := lru.New[string, *FeedCacheEntry](cfg.FeedLRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	return &FeedCache{
		lru:   lruCache,
		ttl:   cfg.GetFeedLRUTTL(),
		clock: systemClock{},
	}, nil
}

// FeedKey identifies one feed request. Ranges are keyed by day so every
// request made on the same day shares an entry.
func FeedKey(stationID string, kind models.ReadingKind, begin, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", stationID, kind, begin.UTC().Format("20060102"), end.UTC().Format("20060102"))
}

// Get returns the cached readings for key, evicting them if they expired.
func (c *FeedCache) Get(key string) ([]models.RawReading, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(key)
	if ok && c.clock.Now().Before(entry.ExpiresAt) {
		c.hits.Add(1)
		return entry.Readings, true
	}
	if ok {
		c.lru.Remove(key)
	}
	c.misses.Add(1)
	return nil, false
}

func (c *FeedCache) Add(key string, readings []models.RawReading) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, &FeedCacheEntry{
		Readings:  readings,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	})
}

// Stats returns hit and miss counts since the cache was created.
func (c *FeedCache) Stats() map[string]uint64 {
	return map[string]uint64{
		"hits":   c.hits.Load(),
		"misses": c.misses.Load(),
	}
}

// Clear removes all entries from the cache
func (c *FeedCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
