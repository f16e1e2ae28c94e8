package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/outlierline/internal/contracts"
	"github.com/wonny/outlierline/pkg/logger"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(ttl time.Duration) (*TimelineCache, *clock) {
	clk := &clock{t: time.Date(2024, 10, 22, 22, 0, 0, 0, time.UTC)}
	c := NewTimelineCache(ttl, logger.Nop())
	c.now = clk.now
	return c, clk
}

func TestPutAndGet(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	assert.True(t, c.Put(contracts.Timeline{GameID: "0022400101"}))
	assert.False(t, c.Put(contracts.Timeline{GameID: "0022400101", LabelsPinned: true}))

	tl, ok := c.Get("0022400101")
	require.True(t, ok)
	assert.True(t, tl.LabelsPinned)

	_, ok = c.Get("0022400999")
	assert.False(t, ok)
}

func TestRecentNewestFirst(t *testing.T) {
	c, clk := newTestCache(time.Hour)

	c.Put(contracts.Timeline{GameID: "a"})
	clk.advance(time.Minute)
	c.Put(contracts.Timeline{GameID: "b"})

	recent := c.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].GameID)
	assert.Equal(t, "a", recent[1].GameID)
}

func TestStaleEntries(t *testing.T) {
	c, clk := newTestCache(time.Hour)

	c.Put(contracts.Timeline{GameID: "old"})
	clk.advance(2 * time.Hour)
	c.Put(contracts.Timeline{GameID: "new"})

	_, ok := c.Get("old")
	assert.False(t, ok)
	assert.Len(t, c.Recent(), 1)

	stats := c.Stats()
	assert.Equal(t, CacheStats{TotalCount: 2, FreshCount: 1, StaleCount: 1}, stats)

	assert.Equal(t, 1, c.CleanStale())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, c.CleanStale())
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c, clk := newTestCache(0)
	c.Put(contracts.Timeline{GameID: "a"})
	clk.advance(1000 * time.Hour)

	_, ok := c.Get("a")
	assert.True(t, ok)
}
