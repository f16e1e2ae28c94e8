package viewstate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/outlierline/internal/contracts"
)

var testGames = []contracts.GameSummary{
	{GameID: "0022400101", Matchup: "LAL vs. BOS"},
	{GameID: "0022400102", Matchup: "LAL @ GSW"},
}

func TestSelectGameRequiresTeam(t *testing.T) {
	_, err := Idle().SelectGame("0022400101")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSelectTeamRejectsEmpty(t *testing.T) {
	v := Idle()
	next, err := v.SelectTeam("", nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, v, next)
}

func TestHappyPath(t *testing.T) {
	v, err := Idle().SelectTeam("LAL", testGames)
	require.NoError(t, err)
	assert.Equal(t, StateTeamSelected, v.State)
	assert.Len(t, v.Games, 2)

	v, err = v.SelectGame("0022400101")
	require.NoError(t, err)
	assert.Equal(t, StateGameSelected, v.State)
	assert.Nil(t, v.Timeline)

	v, err = v.Loaded(v.Request, contracts.Timeline{GameID: "0022400101"})
	require.NoError(t, err)
	assert.Equal(t, StateOutliersLoaded, v.State)
	require.NotNil(t, v.Timeline)
	assert.Equal(t, "0022400101", v.Timeline.GameID)
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	team, err := Idle().SelectTeam("LAL", testGames)
	require.NoError(t, err)

	selected, err := team.SelectGame("0022400101")
	require.NoError(t, err)

	assert.Equal(t, StateTeamSelected, team.State)
	assert.Empty(t, team.GameID)
	assert.NotEqual(t, team.Request, selected.Request)

	toggled := selected.TogglePins()
	assert.False(t, selected.LabelsPinned)
	assert.True(t, toggled.LabelsPinned)
}

func TestSelectTeamCopiesGames(t *testing.T) {
	games := append([]contracts.GameSummary(nil), testGames...)
	v, err := Idle().SelectTeam("LAL", games)
	require.NoError(t, err)

	games[0].GameID = "changed"
	assert.Equal(t, "0022400101", v.Games[0].GameID)
}

func TestStaleResultsDiscarded(t *testing.T) {
	v, _ := Idle().SelectTeam("LAL", testGames)
	first, _ := v.SelectGame("0022400101")
	second, _ := first.SelectGame("0022400102")

	_, err := second.Loaded(first.Request, contracts.Timeline{GameID: "0022400101"})
	assert.ErrorIs(t, err, ErrStaleResult)

	_, err = second.Failed(first.Request, errors.New("boom"))
	assert.ErrorIs(t, err, ErrStaleResult)

	// switching teams invalidates the request as well
	other, _ := second.SelectTeam("BOS", nil)
	_, err = other.Loaded(second.Request, contracts.Timeline{})
	assert.ErrorIs(t, err, ErrStaleResult)
}

func TestFailedThenReselect(t *testing.T) {
	v, _ := Idle().SelectTeam("LAL", testGames)
	v, _ = v.SelectGame("0022400101")

	v, err := v.Failed(v.Request, errors.New("upstream unavailable"))
	require.NoError(t, err)
	assert.Equal(t, StateLoadFailed, v.State)
	assert.Equal(t, "upstream unavailable", v.Error)

	v, err = v.SelectGame("0022400102")
	require.NoError(t, err)
	assert.Equal(t, StateGameSelected, v.State)
	assert.Empty(t, v.Error)
}

func TestTogglePinsAppliesToTimeline(t *testing.T) {
	v, _ := Idle().SelectTeam("LAL", testGames)
	v, _ = v.SelectGame("0022400101")
	v = v.TogglePins()

	v, err := v.Loaded(v.Request, contracts.Timeline{GameID: "0022400101"})
	require.NoError(t, err)
	assert.True(t, v.Timeline.LabelsPinned)

	off := v.TogglePins()
	assert.False(t, off.LabelsPinned)
	assert.False(t, off.Timeline.LabelsPinned)
	assert.True(t, v.Timeline.LabelsPinned)
}

func TestTogglePinsSurvivesTeamChange(t *testing.T) {
	v := Idle().TogglePins()
	v, err := v.SelectTeam("LAL", testGames)
	require.NoError(t, err)
	assert.True(t, v.LabelsPinned)
}
