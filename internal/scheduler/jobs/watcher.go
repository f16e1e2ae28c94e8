package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wonny/outlierline/internal/contracts"
	"github.com/wonny/outlierline/internal/outliers"
	"github.com/wonny/outlierline/pkg/logger"
)

// GameSource is the upstream view the watcher needs
type GameSource interface {
	FinishedGames(ctx context.Context) ([]string, error)
	GetOutliers(ctx context.Context, gameID string) (*contracts.GamePayload, error)
}

// Archive stores processed payloads
type Archive interface {
	IsArchived(ctx context.Context, gameID string) (bool, error)
	Save(ctx context.Context, payload *contracts.GamePayload) error
}

// Broadcaster receives every freshly built timeline
type Broadcaster interface {
	Broadcast(tl contracts.Timeline) int
}

// Summary describes one watcher pass
type Summary struct {
	Finished  int      `json:"finished"`
	Skipped   int      `json:"skipped"`
	Processed []string `json:"processed"`
	Failed    []string `json:"failed"`
	Rejected  int      `json:"rejected"` // outliers that could not be rendered
}

// GameWatcherJob archives and publishes the outliers of finished games
// ⭐ SSOT: 종료 경기 감시는 이 Job에서만
type GameWatcherJob struct {
	games       GameSource
	archive     Archive
	builder     *outliers.Builder
	broadcaster Broadcaster
	schedule    string
	logger      *logger.Logger

	// seen is used when no archive is configured
	mu   sync.Mutex
	seen map[string]bool
}

// NewGameWatcherJob creates the watcher. archive and broadcaster may be nil.
func NewGameWatcherJob(games GameSource, archive Archive, builder *outliers.Builder, broadcaster Broadcaster, schedule string, log *logger.Logger) *GameWatcherJob {
	if builder == nil {
		builder = outliers.NewBuilder(nil, nil)
	}
	if schedule == "" {
		schedule = "0 */3 * * * *"
	}
	return &GameWatcherJob{
		games:       games,
		archive:     archive,
		builder:     builder,
		broadcaster: broadcaster,
		schedule:    schedule,
		logger:      log.Component("game_watcher"),
		seen:        make(map[string]bool),
	}
}

// Name returns the job name
func (j *GameWatcherJob) Name() string {
	return "game_watcher"
}

// Schedule returns the cron schedule
func (j *GameWatcherJob) Schedule() string {
	return j.schedule
}

// Run executes one pass
func (j *GameWatcherJob) Run(ctx context.Context) error {
	_, err := j.Process(ctx)
	return err
}

// Process checks every finished game once. A failing game is reported and
// retried on the next pass; it never stops the others.
func (j *GameWatcherJob) Process(ctx context.Context) (Summary, error) {
	var summary Summary

	ids, err := j.games.FinishedGames(ctx)
	if err != nil {
		return summary, fmt.Errorf("list finished games: %w", err)
	}
	summary.Finished = len(ids)

	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		done, err := j.isDone(ctx, id)
		if err != nil {
			summary.Failed = append(summary.Failed, id)
			errs = append(errs, err)
			continue
		}
		if done {
			summary.Skipped++
			continue
		}

		rejected, err := j.processGame(ctx, id)
		if err != nil {
			j.logger.WithField("game_id", id).WithError(err).Warn("Failed to process game")
			summary.Failed = append(summary.Failed, id)
			errs = append(errs, fmt.Errorf("game %s: %w", id, err))
			continue
		}

		summary.Processed = append(summary.Processed, id)
		summary.Rejected += rejected
	}

	j.logger.WithFields(map[string]interface{}{
		"finished":  summary.Finished,
		"skipped":   summary.Skipped,
		"processed": len(summary.Processed),
		"failed":    len(summary.Failed),
	}).Info("Game watcher pass completed")

	return summary, errors.Join(errs...)
}

func (j *GameWatcherJob) processGame(ctx context.Context, id string) (int, error) {
	payload, err := j.games.GetOutliers(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("fetch outliers: %w", err)
	}

	if j.archive != nil {
		if err := j.archive.Save(ctx, payload); err != nil {
			return 0, fmt.Errorf("archive: %w", err)
		}
	}
	j.markDone(id)

	timeline := j.builder.BuildTimeline(*payload, false)
	for _, rec := range timeline.Rejected {
		j.logger.WithFields(map[string]interface{}{
			"game_id": id,
			"name":    rec.Name,
			"stat":    rec.StatKey,
			"reason":  rec.Reason,
		}).Warn("Outlier rejected")
	}
	if n := outliers.LabelFallbacks(timeline); n > 0 {
		j.logger.WithFields(map[string]interface{}{
			"game_id":   id,
			"fallbacks": n,
		}).Warn("Malformed stat keys rendered with full key")
	}

	if j.broadcaster != nil {
		sent := j.broadcaster.Broadcast(timeline)
		j.logger.WithFields(map[string]interface{}{
			"game_id":     id,
			"matchup":     timeline.Matchup(),
			"subscribers": sent,
		}).Info("New game timeline published")
	}

	return len(timeline.Rejected), nil
}

func (j *GameWatcherJob) isDone(ctx context.Context, id string) (bool, error) {
	j.mu.Lock()
	seen := j.seen[id]
	j.mu.Unlock()
	if seen || j.archive == nil {
		return seen, nil
	}

	archived, err := j.archive.IsArchived(ctx, id)
	if err != nil {
		return false, fmt.Errorf("game %s: check archive: %w", id, err)
	}
	if archived {
		j.markDone(id)
	}
	return archived, nil
}

func (j *GameWatcherJob) markDone(id string) {
	j.mu.Lock()
	j.seen[id] = true
	j.mu.Unlock()
}
