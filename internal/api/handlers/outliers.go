package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/outlierline/internal/archive"
	"github.com/wonny/outlierline/internal/contracts"
	"github.com/wonny/outlierline/internal/external/statsapi"
	"github.com/wonny/outlierline/internal/outliers"
	"github.com/wonny/outlierline/pkg/logger"
)

// Upstream is the stats API surface the handlers use
type Upstream interface {
	ListGames(ctx context.Context, teamAbbr string) ([]contracts.GameSummary, error)
	GetOutliers(ctx context.Context, gameID string) (*contracts.GamePayload, error)
}

// PayloadArchive serves finished games without asking upstream
type PayloadArchive interface {
	Get(ctx context.Context, gameID string) (*contracts.GamePayload, error)
	Recent(ctx context.Context, limit int) ([]archive.Entry, error)
}

// OutliersHandler handles team, game and outlier endpoints
// ⭐ SSOT: 아웃라이어 API 핸들러는 이 구조체에서만
type OutliersHandler struct {
	upstream Upstream
	archive  PayloadArchive
	builder  *outliers.Builder
	logger   *logger.Logger
}

// NewOutliersHandler creates the handler. archive may be nil.
func NewOutliersHandler(upstream Upstream, archive PayloadArchive, builder *outliers.Builder, log *logger.Logger) *OutliersHandler {
	if builder == nil {
		builder = outliers.NewBuilder(nil, nil)
	}
	return &OutliersHandler{
		upstream: upstream,
		archive:  archive,
		builder:  builder,
		logger:   log.Component("api"),
	}
}

// TeamResponse is one entry of the team dropdown
type TeamResponse struct {
	Abbr string                    `json:"abbr"`
	ID   string                    `json:"id"`
	Logo contracts.ImageDescriptor `json:"logo"`
}

// GetTeams returns the team directory
// GET /api/teams
func (h *OutliersHandler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams := statsapi.Teams()
	resp := make([]TeamResponse, 0, len(teams))
	for _, t := range teams {
		resp = append(resp, TeamResponse{
			Abbr: t.Abbr,
			ID:   t.ID,
			Logo: h.builder.Images().TeamLogo(t.Abbr),
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetGames returns a team's games
// GET /api/games/{team}
func (h *OutliersHandler) GetGames(w http.ResponseWriter, r *http.Request) {
	team := strings.ToUpper(mux.Vars(r)["team"])

	games, err := h.upstream.ListGames(r.Context(), team)
	if err != nil {
		h.fail(w, err, "team", team)
		return
	}

	respondJSON(w, http.StatusOK, games)
}

// GetOutliers returns the validated upstream payload
// GET /api/outliers/{gameID}
func (h *OutliersHandler) GetOutliers(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameID(w, r)
	if !ok {
		return
	}

	payload, err := h.payload(r.Context(), gameID)
	if err != nil {
		h.fail(w, err, "game_id", gameID)
		return
	}

	respondJSON(w, http.StatusOK, payload)
}

// GetTimeline returns both bar columns of a game
// GET /api/timeline/{gameID}?pinned=true
func (h *OutliersHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameID(w, r)
	if !ok {
		return
	}

	pinned := false
	if v := r.URL.Query().Get("pinned"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "pinned must be true or false")
			return
		}
		pinned = b
	}

	payload, err := h.payload(r.Context(), gameID)
	if err != nil {
		h.fail(w, err, "game_id", gameID)
		return
	}

	timeline := h.builder.BuildTimeline(*payload, pinned)
	if len(timeline.Rejected) > 0 {
		h.logger.WithFields(map[string]interface{}{
			"game_id":  gameID,
			"rejected": len(timeline.Rejected),
		}).Warn("Some outliers could not be rendered")
	}

	respondJSON(w, http.StatusOK, timeline)
}

// GetArchive lists recently archived games
// GET /api/archive?limit=20
func (h *OutliersHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		respondError(w, http.StatusNotFound, "archive is disabled")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 200 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	entries, err := h.archive.Recent(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list archive")
		respondError(w, http.StatusInternalServerError, "failed to list archive")
		return
	}
	if entries == nil {
		entries = []archive.Entry{}
	}

	respondJSON(w, http.StatusOK, entries)
}

// payload prefers the archive; finished games never change
func (h *OutliersHandler) payload(ctx context.Context, gameID string) (*contracts.GamePayload, error) {
	if h.archive != nil {
		p, err := h.archive.Get(ctx, gameID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, archive.ErrNotFound) {
			h.logger.WithError(err).WithField("game_id", gameID).Warn("Archive lookup failed, asking upstream")
		}
	}
	return h.upstream.GetOutliers(ctx, gameID)
}

func (h *OutliersHandler) fail(w http.ResponseWriter, err error, key, value string) {
	status, message := statusFor(err)
	log := h.logger.WithError(err).WithField(key, value)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed")
	} else {
		log.Debug("Request failed")
	}
	respondError(w, status, message)
}

func parseGameID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := mux.Vars(r)["gameID"]
	if raw == "" {
		respondError(w, http.StatusBadRequest, "game id is required")
		return "", false
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			respondError(w, http.StatusBadRequest, "game id must be numeric")
			return "", false
		}
	}
	return statsapi.NormalizeGameID(raw), true
}
