package jobs

import (
	"context"

	"github.com/wonny/outlierline/internal/realtime/cache"
	"github.com/wonny/outlierline/pkg/logger"
)

// CacheCleanupJob drops expired timelines from the replay cache
type CacheCleanupJob struct {
	cache  *cache.TimelineCache
	logger *logger.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(timelines *cache.TimelineCache, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache:  timelines,
		logger: log,
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Schedule returns the cron schedule
func (j *CacheCleanupJob) Schedule() string {
	return "0 */5 * * * *" // Every 5 minutes
}

// Run executes the cache cleanup
func (j *CacheCleanupJob) Run(ctx context.Context) error {
	if count := j.cache.CleanStale(); count > 0 {
		j.logger.WithField("removed", count).Info("Cache cleanup completed")
	}
	return nil
}
