package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/outlierline/internal/archive"
	"github.com/wonny/outlierline/internal/contracts"
	"github.com/wonny/outlierline/internal/external/statsapi"
	"github.com/wonny/outlierline/pkg/logger"
)

type fakeUpstream struct {
	games    map[string][]contracts.GameSummary
	payloads map[string]*contracts.GamePayload
	err      error
	calls    int
}

func (f *fakeUpstream) ListGames(ctx context.Context, team string) ([]contracts.GameSummary, error) {
	if _, ok := statsapi.TeamID(team); !ok {
		return nil, fmt.Errorf("%w: %q", statsapi.ErrUnknownTeam, team)
	}
	games, ok := f.games[team]
	if !ok {
		return nil, fmt.Errorf("%w: no games for team %s", statsapi.ErrNotFound, team)
	}
	return games, nil
}

func (f *fakeUpstream) GetOutliers(ctx context.Context, gameID string) (*contracts.GamePayload, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.payloads[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: game %s", statsapi.ErrNotFound, gameID)
	}
	return p, nil
}

type fakeArchive struct {
	payloads map[string]*contracts.GamePayload
	entries  []archive.Entry
	err      error
}

func (f *fakeArchive) Get(ctx context.Context, gameID string) (*contracts.GamePayload, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.payloads[gameID]; ok {
		return p, nil
	}
	return nil, archive.ErrNotFound
}

func (f *fakeArchive) Recent(ctx context.Context, limit int) ([]archive.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func fp(v float64) *float64     { return &v }
func ip(v int) *contracts.Count { c := contracts.Count(v); return &c }

func samplePayload(id string) *contracts.GamePayload {
	return &contracts.GamePayload{
		GameID:     id,
		Teams:      []string{"LAL", "BOS"},
		FinalScore: map[string]int{"LAL": 112, "BOS": 108},
		Outliers: []contracts.OutlierGroup{{
			Positive: []contracts.OutlierRecord{{
				Name: "LeBron James", SubjectType: contracts.SubjectPlayer, StatKey: "Base - FG_PCT",
				Actual: fp(0.52), Average: fp(0.45), Score: 2.1, PlayerID: "2544", Made: ip(26), Attempted: ip(50),
			}},
			Negative: []contracts.OutlierRecord{{
				Name: "Celtics", SubjectType: contracts.SubjectTeam, StatKey: "TOV",
				Actual: fp(21), Average: fp(12.5), Score: -1.9, TeamAbbr: "BOS",
			}},
		}},
	}
}

func newTestRouter(up *fakeUpstream, arch PayloadArchive) *mux.Router {
	h := NewOutliersHandler(up, arch, nil, logger.Nop())
	r := mux.NewRouter()
	r.HandleFunc("/api/teams", h.GetTeams)
	r.HandleFunc("/api/games/{team}", h.GetGames)
	r.HandleFunc("/api/outliers/{gameID}", h.GetOutliers)
	r.HandleFunc("/api/timeline/{gameID}", h.GetTimeline)
	r.HandleFunc("/api/archive", h.GetArchive)
	return r
}

func do(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestGetTeams(t *testing.T) {
	rec := do(t, newTestRouter(&fakeUpstream{}, nil), "/api/teams")
	require.Equal(t, http.StatusOK, rec.Code)

	var teams []TeamResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &teams))
	assert.Len(t, teams, 30)
	assert.Equal(t, "logos/"+teams[0].Abbr+".svg", teams[0].Logo.URL)
}

func TestGetGames(t *testing.T) {
	up := &fakeUpstream{games: map[string][]contracts.GameSummary{
		"LAL": {{GameID: "0022400101", Matchup: "LAL vs. BOS"}},
	}}
	r := newTestRouter(up, nil)

	rec := do(t, r, "/api/games/lal")
	require.Equal(t, http.StatusOK, rec.Code)
	var games []contracts.GameSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &games))
	require.Len(t, games, 1)
	assert.Equal(t, "0022400101", games[0].GameID)

	assert.Equal(t, http.StatusNotFound, do(t, r, "/api/games/BOS").Code)

	rec = do(t, r, "/api/games/XYZ")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, errorBody(t, rec), "unknown team")
}

func TestGetOutliers(t *testing.T) {
	up := &fakeUpstream{payloads: map[string]*contracts.GamePayload{"0022400101": samplePayload("0022400101")}}
	r := newTestRouter(up, nil)

	// short ids are zero padded
	rec := do(t, r, "/api/outliers/22400101")
	require.Equal(t, http.StatusOK, rec.Code)
	var p contracts.GamePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "0022400101", p.GameID)

	assert.Equal(t, http.StatusNotFound, do(t, r, "/api/outliers/0022400999").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, "/api/outliers/abc").Code)
}

func TestGetOutliersUpstreamErrors(t *testing.T) {
	const upstreamURL = "http://stats.internal:5000/api/outliers/0022400101"

	tests := []struct {
		name    string
		err     error
		want    int
		message string
	}{
		{"bad gateway", fmt.Errorf("%w: status 500: %s", statsapi.ErrUpstream, upstreamURL), http.StatusBadGateway, "upstream request failed"},
		{"invalid payload", fmt.Errorf("%w: expected 2 teams, got 1", statsapi.ErrInvalidPayload), http.StatusBadGateway, "invalid outlier payload from upstream"},
		{"not found", fmt.Errorf("%w: %s", statsapi.ErrNotFound, upstreamURL), http.StatusNotFound, "not found"},
		{"unexpected", fmt.Errorf("dial %s: boom", upstreamURL), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeUpstream{err: tt.err}, nil)
			rec := do(t, r, "/api/outliers/0022400101")
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.message, errorBody(t, rec))
			assert.NotContains(t, rec.Body.String(), "stats.internal")
		})
	}
}

func TestGetTimeline(t *testing.T) {
	up := &fakeUpstream{payloads: map[string]*contracts.GamePayload{"0022400101": samplePayload("0022400101")}}
	r := newTestRouter(up, nil)

	rec := do(t, r, "/api/timeline/0022400101?pinned=true")
	require.Equal(t, http.StatusOK, rec.Code)

	var tl contracts.Timeline
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tl))
	assert.True(t, tl.LabelsPinned)
	assert.Equal(t, []string{"LAL", "BOS"}, tl.Teams)
	require.Len(t, tl.Positive, 1)
	require.Len(t, tl.Negative, 1)

	pos := tl.Positive[0]
	assert.Equal(t, 500, pos.HeightPx)
	assert.Equal(t, "FG_PCT", pos.StatLabel)
	assert.Equal(t, "52% (26/50)", pos.FormattedActual)
	assert.Equal(t, "45%", pos.FormattedAvg)
	assert.Equal(t, contracts.ImagePlayerHeadshot, pos.Image.Kind)

	neg := tl.Negative[0]
	assert.Equal(t, "TOV", neg.StatLabel)
	assert.True(t, neg.LabelFallback)
	assert.Equal(t, "21", neg.FormattedActual)
}

func TestGetTimelineBadPinned(t *testing.T) {
	up := &fakeUpstream{payloads: map[string]*contracts.GamePayload{"0022400101": samplePayload("0022400101")}}
	rec := do(t, newTestRouter(up, nil), "/api/timeline/0022400101?pinned=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, up.calls)
}

func TestArchiveServedFirst(t *testing.T) {
	up := &fakeUpstream{}
	arch := &fakeArchive{payloads: map[string]*contracts.GamePayload{"0022400101": samplePayload("0022400101")}}
	r := newTestRouter(up, arch)

	assert.Equal(t, http.StatusOK, do(t, r, "/api/outliers/0022400101").Code)
	assert.Zero(t, up.calls)

	// archive miss falls through to upstream
	assert.Equal(t, http.StatusNotFound, do(t, r, "/api/outliers/0022400102").Code)
	assert.Equal(t, 1, up.calls)
}

func TestArchiveErrorFallsBackToUpstream(t *testing.T) {
	up := &fakeUpstream{payloads: map[string]*contracts.GamePayload{"0022400101": samplePayload("0022400101")}}
	arch := &fakeArchive{err: errors.New("connection refused")}

	rec := do(t, newTestRouter(up, arch), "/api/outliers/0022400101")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, up.calls)
}

func TestGetArchive(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, do(t, newTestRouter(&fakeUpstream{}, nil), "/api/archive").Code)

	arch := &fakeArchive{entries: []archive.Entry{{GameID: "0022400101", Teams: []string{"LAL", "BOS"}}}}
	r := newTestRouter(&fakeUpstream{}, arch)

	rec := do(t, r, "/api/archive?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []archive.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)

	assert.Equal(t, http.StatusBadRequest, do(t, r, "/api/archive?limit=0").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, "/api/archive?limit=x").Code)

	empty := newTestRouter(&fakeUpstream{}, &fakeArchive{})
	rec = do(t, empty, "/api/archive")
	assert.JSONEq(t, "[]", rec.Body.String())
}
