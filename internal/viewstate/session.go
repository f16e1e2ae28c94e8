package viewstate

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/wonny/outlierline/internal/contracts"
	"github.com/wonny/outlierline/internal/outliers"
	"github.com/wonny/outlierline/pkg/logger"
)

// GamesSource lists a team's games
type GamesSource interface {
	ListGames(ctx context.Context, teamAbbr string) ([]contracts.GameSummary, error)
}

// PayloadSource fetches one game's outlier payload
type PayloadSource interface {
	GetOutliers(ctx context.Context, gameID string) (*contracts.GamePayload, error)
}

// Upstream is what a Session needs from the stats API
type Upstream interface {
	GamesSource
	PayloadSource
}

const updatesBuffer = 16

// Session owns one user's ViewModel and the in-flight outliers request.
// Selecting a new team or game cancels the previous request; a result that
// arrives late is discarded by its request number.
type Session struct {
	id       string
	upstream Upstream
	builder  *outliers.Builder
	logger   *logger.Logger

	mu      sync.Mutex
	view    ViewModel
	cancel  context.CancelFunc
	updates chan ViewModel
	closed  bool

	ctx     context.Context
	stop    context.CancelFunc
	loading sync.WaitGroup
}

// NewSession creates an idle session
func NewSession(upstream Upstream, builder *outliers.Builder, log *logger.Logger) *Session {
	if builder == nil {
		builder = outliers.NewBuilder(nil, nil)
	}
	if log == nil {
		log = logger.Nop()
	}

	id := uuid.NewString()
	ctx, stop := context.WithCancel(context.Background())

	return &Session{
		id:       id,
		upstream: upstream,
		builder:  builder,
		logger:   log.WithField("session_id", id),
		view:     Idle(),
		updates:  make(chan ViewModel, updatesBuffer),
		ctx:      ctx,
		stop:     stop,
	}
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// View returns the current snapshot
func (s *Session) View() ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Updates delivers every new ViewModel. Slow readers miss intermediate
// snapshots, never the latest one.
func (s *Session) Updates() <-chan ViewModel {
	return s.updates
}

// SelectTeam loads the team's games and moves to TeamSelected.
// Any in-flight outliers request is cancelled.
func (s *Session) SelectTeam(ctx context.Context, team string) error {
	games, err := s.upstream.ListGames(ctx, team)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.view.SelectTeam(team, games)
	if err != nil {
		return err
	}

	s.cancelLocked()
	s.setLocked(next)

	s.logger.WithFields(map[string]interface{}{
		"team":  team,
		"games": len(games),
	}).Debug("Team selected")

	return nil
}

// SelectGame moves to GameSelected and starts loading the game's outliers.
// It returns without waiting for the load.
func (s *Session) SelectGame(gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("session closed")
	}

	next, err := s.view.SelectGame(gameID)
	if err != nil {
		return err
	}

	s.cancelLocked()
	s.setLocked(next)

	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel

	s.loading.Add(1)
	go s.load(ctx, next.Request, gameID)

	return nil
}

// TogglePins flips label visibility in every state
func (s *Session) TogglePins() ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setLocked(s.view.TogglePins())
	return s.view
}

// Wait blocks until no load is in flight
func (s *Session) Wait() {
	s.loading.Wait()
}

// Close cancels any in-flight load and closes the updates channel
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelLocked()
	s.stop()
	s.mu.Unlock()

	s.loading.Wait()
	close(s.updates)
}

func (s *Session) load(ctx context.Context, request uint64, gameID string) {
	defer s.loading.Done()

	log := s.logger.WithFields(map[string]interface{}{
		"game_id": gameID,
		"request": request,
	})

	payload, err := s.upstream.GetOutliers(ctx, gameID)
	if ctx.Err() != nil {
		log.Debug("Outliers request cancelled")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var next ViewModel
	if err != nil {
		log.WithError(err).Warn("Outliers request failed")
		next, err = s.view.Failed(request, err)
	} else {
		timeline := s.builder.BuildTimeline(*payload, s.view.LabelsPinned)
		if n := len(timeline.Rejected); n > 0 {
			log.WithField("rejected", n).Warn("Some outliers could not be rendered")
		}
		if n := outliers.LabelFallbacks(timeline); n > 0 {
			log.WithField("fallbacks", n).Warn("Malformed stat keys rendered with full key")
		}
		next, err = s.view.Loaded(request, timeline)
	}

	if err != nil {
		log.WithError(err).Debug("Discarding outliers result")
		return
	}

	s.setLocked(next)
}

func (s *Session) cancelLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// setLocked stores v and publishes it, dropping the oldest queued snapshot when full
func (s *Session) setLocked(v ViewModel) {
	s.view = v
	if s.closed {
		return
	}

	for {
		select {
		case s.updates <- v:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}
