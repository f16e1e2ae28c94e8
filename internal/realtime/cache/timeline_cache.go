package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/wonny/outlierline/internal/contracts"
	"github.com/wonny/outlierline/pkg/logger"
)

// entry is one published timeline
type entry struct {
	timeline    contracts.Timeline
	publishedAt time.Time
	seq         uint64
}

// TimelineCache keeps recently published timelines for late subscribers
// ⭐ SSOT: 최근 발행 타임라인 캐싱은 이 구조체에서만
type TimelineCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	logger  *logger.Logger
	now     func() time.Time
	seq     uint64
}

// NewTimelineCache creates a cache whose entries expire after ttl
func NewTimelineCache(ttl time.Duration, log *logger.Logger) *TimelineCache {
	return &TimelineCache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		logger:  log,
		now:     time.Now,
	}
}

// Put stores the timeline, replacing an older copy of the same game.
// Returns true when the game was not cached yet.
func (c *TimelineCache) Put(tl contracts.Timeline) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, exists := c.entries[tl.GameID]
	c.seq++
	c.entries[tl.GameID] = &entry{timeline: tl, publishedAt: c.now(), seq: c.seq}

	c.logger.WithFields(map[string]interface{}{
		"game_id":  tl.GameID,
		"replaced": exists,
	}).Debug("Cached timeline")

	return !exists
}

// Get returns a fresh timeline
func (c *TimelineCache) Get(gameID string) (contracts.Timeline, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[gameID]
	if !exists || c.stale(e) {
		return contracts.Timeline{}, false
	}
	return e.timeline, true
}

// Recent returns fresh timelines, newest first
func (c *TimelineCache) Recent() []contracts.Timeline {
	c.mu.RLock()
	fresh := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		if !c.stale(e) {
			fresh = append(fresh, e)
		}
	}
	c.mu.RUnlock()

	sort.Slice(fresh, func(i, j int) bool {
		if !fresh[i].publishedAt.Equal(fresh[j].publishedAt) {
			return fresh[i].publishedAt.After(fresh[j].publishedAt)
		}
		return fresh[i].seq > fresh[j].seq
	})

	out := make([]contracts.Timeline, len(fresh))
	for i, e := range fresh {
		out[i] = e.timeline
	}
	return out
}

// Len returns the number of cached timelines, stale ones included
func (c *TimelineCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CleanStale removes expired timelines
func (c *TimelineCache) CleanStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for id, e := range c.entries {
		if c.stale(e) {
			delete(c.entries, id)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleaned stale timelines from cache")
	}

	return count
}

// Stats returns cache statistics
func (c *TimelineCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{TotalCount: len(c.entries)}
	for _, e := range c.entries {
		if c.stale(e) {
			stats.StaleCount++
		}
	}
	stats.FreshCount = stats.TotalCount - stats.StaleCount

	return stats
}

func (c *TimelineCache) stale(e *entry) bool {
	return c.ttl > 0 && c.now().Sub(e.publishedAt) > c.ttl
}

// CacheStats represents cache statistics
type CacheStats struct {
	TotalCount int `json:"total_count"`
	FreshCount int `json:"fresh_count"`
	StaleCount int `json:"stale_count"`
}
