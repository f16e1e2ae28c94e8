package statsapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/outlierline/internal/contracts"
	"github.com/wonny/outlierline/pkg/config"
	"github.com/wonny/outlierline/pkg/httputil"
	"github.com/wonny/outlierline/pkg/logger"
	"github.com/wonny/outlierline/pkg/redis"
)

var (
	// ErrNotFound: upstream has no such team schedule or game
	ErrNotFound = errors.New("not found")

	// ErrUnknownTeam: the abbreviation is not in the team directory
	ErrUnknownTeam = errors.New("unknown team")

	// ErrUpstream: upstream failed or answered with an unexpected status
	ErrUpstream = errors.New("upstream error")
)

// gameStatusFinal is the scoreboard status of a finished game
const gameStatusFinal = 3

// Client handles communication with the upstream outlier service
// ⭐ SSOT: upstream stats API 호출은 이 클라이언트에서만
type Client struct {
	httpClient    *httputil.Client
	cache         *redis.Cache
	logger        *logger.Logger
	baseURL       string
	scoreboardURL string
	gamesTTL      time.Duration
	payloadTTL    time.Duration
}

// NewClient creates a new upstream client. cache may be nil.
func NewClient(cfg *config.Config, httpClient *httputil.Client, cache *redis.Cache, log *logger.Logger) *Client {
	return &Client{
		httpClient:    httpClient,
		cache:         cache,
		logger:        log.Component("statsapi"),
		baseURL:       strings.TrimRight(cfg.StatsAPI.BaseURL, "/"),
		scoreboardURL: cfg.StatsAPI.ScoreboardURL,
		gamesTTL:      cfg.StatsAPI.GamesTTL,
		payloadTTL:    cfg.StatsAPI.PayloadTTL,
	}
}

// gameWire accepts both the "matchup" and legacy "opponent" spellings
type gameWire struct {
	GameID   contracts.ID `json:"game_id"`
	Date     string       `json:"date"`
	Matchup  string       `json:"matchup"`
	Opponent string       `json:"opponent"`
	Result   string       `json:"result"`
	HomeAway string       `json:"home_away"`
}

func (g gameWire) summary() contracts.GameSummary {
	matchup := g.Matchup
	if matchup == "" {
		matchup = g.Opponent
	}
	return contracts.GameSummary{
		GameID:   NormalizeGameID(string(g.GameID)),
		Date:     g.Date,
		Matchup:  matchup,
		Result:   g.Result,
		HomeAway: g.HomeAway,
	}
}

// ListGames returns the games of a team for the dropdown
func (c *Client) ListGames(ctx context.Context, teamAbbr string) ([]contracts.GameSummary, error) {
	abbr := strings.ToUpper(strings.TrimSpace(teamAbbr))
	if _, ok := TeamID(abbr); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTeam, teamAbbr)
	}

	var games []contracts.GameSummary
	if c.cacheGet(ctx, redis.GamesKey(abbr), &games) {
		return games, nil
	}

	var wire []gameWire
	if err := c.get(ctx, "/api/games/"+url.PathEscape(abbr), &wire); err != nil {
		return nil, err
	}
	if len(wire) == 0 {
		return nil, fmt.Errorf("%w: no games for team %s", ErrNotFound, abbr)
	}

	games = make([]contracts.GameSummary, 0, len(wire))
	for _, w := range wire {
		games = append(games, w.summary())
	}

	c.cacheSet(ctx, redis.GamesKey(abbr), games, c.gamesTTL)

	c.logger.WithFields(map[string]interface{}{
		"team":  abbr,
		"count": len(games),
	}).Debug("Fetched team games")

	return games, nil
}

// GetOutliers fetches and validates a game's outlier payload
func (c *Client) GetOutliers(ctx context.Context, gameID string) (*contracts.GamePayload, error) {
	id := NormalizeGameID(gameID)
	if id == "" {
		return nil, fmt.Errorf("%w: empty game id", ErrNotFound)
	}

	var payload contracts.GamePayload
	if c.cacheGet(ctx, redis.PayloadKey(id), &payload) {
		return &payload, nil
	}

	if err := c.get(ctx, "/api/outliers/"+url.PathEscape(id), &payload); err != nil {
		return nil, err
	}
	if payload.GameID == "" {
		payload.GameID = id
	}
	if err := ValidatePayload(&payload); err != nil {
		return nil, err
	}

	// finished games do not change any more
	ttl := c.payloadTTL
	if len(payload.FinalScore) > 0 {
		ttl = redis.TTLFinal
	}
	c.cacheSet(ctx, redis.PayloadKey(id), payload, ttl)

	return &payload, nil
}

type scoreboardWire struct {
	Scoreboard struct {
		Games []struct {
			GameID     contracts.ID `json:"gameId"`
			GameStatus int          `json:"gameStatus"`
		} `json:"games"`
	} `json:"scoreboard"`
}

// FinishedGames returns the ids of today's games that reached final status
func (c *Client) FinishedGames(ctx context.Context) ([]string, error) {
	var board scoreboardWire
	if err := c.fetch(ctx, c.scoreboardURL, &board); err != nil {
		return nil, err
	}

	finished := make([]string, 0, len(board.Scoreboard.Games))
	for _, g := range board.Scoreboard.Games {
		if g.GameStatus == gameStatusFinal {
			finished = append(finished, NormalizeGameID(string(g.GameID)))
		}
	}
	return finished, nil
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	return c.fetch(ctx, c.baseURL+path, dest)
}

// fetch maps transport and status failures onto the package errors
func (c *Client) fetch(ctx context.Context, fullURL string, dest interface{}) error {
	err := c.httpClient.GetJSON(ctx, fullURL, dest)
	if err == nil {
		return nil
	}

	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, fullURL)
		}
		return fmt.Errorf("%w: %v", ErrUpstream, statusErr)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

func (c *Client) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if c.cache == nil {
		return false
	}
	found, err := c.cache.Get(ctx, key, dest)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
		return false
	}
	return found
}

func (c *Client) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, value, ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}
