package outliers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/outlierline/internal/contracts"
)

func samplePayload() contracts.GamePayload {
	return contracts.GamePayload{
		GameID:     "0022400061",
		Teams:      []string{"LAL", "MIN"},
		FinalScore: map[string]int{"LAL": 110, "MIN": 103},
		Outliers: []contracts.OutlierGroup{{
			Positive: []contracts.OutlierRecord{
				{Name: "A. Davis", SubjectType: contracts.SubjectPlayer, StatKey: "A. Davis - PTS", Actual: f(36), Average: f(24.7), Score: 3.1, PlayerID: "203076"},
				{Name: "Los Angeles Lakers", SubjectType: contracts.SubjectTeam, StatKey: "Los Angeles Lakers - FG3_PCT", Actual: f(0.45), Average: f(0.36), Score: 2.0, TeamAbbr: "LAL", Made: n(15), Attempted: n(33)},
				{Name: "Broken", SubjectType: contracts.SubjectTeam, StatKey: "Broken - AST", Average: f(1)},
				{Name: "L. James", SubjectType: contracts.SubjectPlayer, StatKey: "L. James - AST", Actual: f(12), Average: f(8.2), Score: 1.4, PlayerID: "2544"},
			},
			Negative: []contracts.OutlierRecord{
				{Name: "A. Edwards", SubjectType: contracts.SubjectPlayer, StatKey: "A. Edwards - FG_PCT", Actual: f(0.32), Average: f(0.45), Score: -2.2, PlayerID: "1630162", Made: n(8), Attempted: n(25)},
				{Name: "Minnesota Timberwolves", SubjectType: contracts.SubjectTeam, StatKey: "TOV", Actual: f(19), Average: f(14.1), Score: -1.3, TeamAbbr: "MIN"},
			},
		}},
	}
}

func TestBuildTimeline(t *testing.T) {
	b := newTestBuilder(t)
	payload := samplePayload()

	tl := b.BuildTimeline(payload, false)

	assert.Equal(t, "0022400061", tl.GameID)
	assert.Equal(t, []string{"LAL", "MIN"}, tl.Teams)
	require.Len(t, tl.TeamLogos, 2)
	assert.Equal(t, "logos/MIN.svg", tl.TeamLogos[1].URL)
	assert.Equal(t, 110, tl.FinalScore["LAL"])
	assert.False(t, tl.LabelsPinned)

	require.Len(t, tl.Positive, 3)
	assert.Equal(t, "A. Davis", tl.Positive[0].PrimaryLabel)
	assert.Equal(t, "Los Angeles Lakers", tl.Positive[1].PrimaryLabel)
	assert.Equal(t, "L. James", tl.Positive[2].PrimaryLabel)

	// the rejected record keeps its slot, so L. James stays at rank 3
	assert.Equal(t, 3, tl.Positive[2].Rank)
	assert.Equal(t, 200, tl.Positive[2].HeightPx)

	require.Len(t, tl.Rejected, 1)
	assert.Equal(t, contracts.SignPositive, tl.Rejected[0].Sign)
	assert.Equal(t, 2, tl.Rejected[0].Rank)
	assert.Contains(t, tl.Rejected[0].Reason, "actual")

	require.Len(t, tl.Negative, 2)
	assert.Equal(t, contracts.SignNegative, tl.Negative[0].Sign)
	assert.Equal(t, "32% (8/25)", tl.Negative[0].FormattedActual)
	assert.Equal(t, "TOV", tl.Negative[1].StatLabel)
	assert.True(t, tl.Negative[1].LabelFallback)
	assert.Equal(t, 1, LabelFallbacks(tl))
}

func TestBuildTimeline_HeightsNonIncreasing(t *testing.T) {
	b := newTestBuilder(t)
	tl := b.BuildTimeline(samplePayload(), true)

	for _, col := range [][]contracts.BarDescriptor{tl.Positive, tl.Negative} {
		for i := 1; i < len(col); i++ {
			assert.LessOrEqual(t, col[i].HeightPx, col[i-1].HeightPx)
			assert.GreaterOrEqual(t, col[i].HeightPx, b.Heights().Floor())
		}
	}
	assert.True(t, tl.LabelsPinned)
}

func TestBuildTimeline_EmptyGroups(t *testing.T) {
	b := newTestBuilder(t)

	tl := b.BuildTimeline(contracts.GamePayload{
		GameID:   "1",
		Teams:    []string{"BOS", "NYK"},
		Outliers: []contracts.OutlierGroup{{}},
	}, false)

	assert.Empty(t, tl.Positive)
	assert.Empty(t, tl.Negative)
	assert.Empty(t, tl.Rejected)
	assert.NotNil(t, tl.Positive)
}

func TestBuildTimeline_OnlyFirstGroupUsed(t *testing.T) {
	b := newTestBuilder(t)
	payload := samplePayload()
	payload.Outliers = append(payload.Outliers, contracts.OutlierGroup{
		Positive: []contracts.OutlierRecord{{Name: "Ignored", StatKey: "Ignored - PTS", Actual: f(1), Average: f(1)}},
	})

	tl := b.BuildTimeline(payload, false)
	for _, bar := range tl.Positive {
		assert.NotEqual(t, "Ignored", bar.PrimaryLabel)
	}
}

func TestBuildTimeline_DoesNotAliasPayload(t *testing.T) {
	b := newTestBuilder(t)
	payload := samplePayload()

	tl := b.BuildTimeline(payload, false)
	payload.Teams[0] = "XXX"
	payload.FinalScore["LAL"] = 0

	assert.Equal(t, "LAL", tl.Teams[0])
	assert.Equal(t, 110, tl.FinalScore["LAL"])
}
