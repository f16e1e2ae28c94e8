package viewstate

import (
	"errors"
	"fmt"

	"github.com/wonny/outlierline/internal/contracts"
)

// State is a step of the team → game → outliers selection flow
type State string

const (
	StateIdle           State = "idle"
	StateTeamSelected   State = "team_selected"
	StateGameSelected   State = "game_selected" // outliers request in flight
	StateOutliersLoaded State = "outliers_loaded"
	StateLoadFailed     State = "load_failed"
)

var (
	// ErrInvalidTransition: the action is not allowed in the current state
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrStaleResult: a load finished after the user moved on
	ErrStaleResult = errors.New("stale result")
)

// ViewModel is an immutable snapshot consumed by a stateless renderer.
// Transitions return a new value and leave the receiver untouched.
type ViewModel struct {
	State        State                   `json:"state"`
	Team         string                  `json:"team,omitempty"`
	Games        []contracts.GameSummary `json:"games,omitempty"`
	GameID       string                  `json:"game_id,omitempty"`
	Timeline     *contracts.Timeline     `json:"timeline,omitempty"`
	Error        string                  `json:"error,omitempty"`
	LabelsPinned bool                    `json:"labels_pinned"`

	// Request is bumped on every game selection; results carry it back
	Request uint64 `json:"request"`
}

// Idle is the initial view
func Idle() ViewModel {
	return ViewModel{State: StateIdle}
}

// SelectTeam moves to TeamSelected from any state, dropping game and timeline.
// Bumping Request makes any in-flight load stale.
func (v ViewModel) SelectTeam(team string, games []contracts.GameSummary) (ViewModel, error) {
	if team == "" {
		return v, fmt.Errorf("%w: empty team", ErrInvalidTransition)
	}

	list := make([]contracts.GameSummary, len(games))
	copy(list, games)

	return ViewModel{
		State:        StateTeamSelected,
		Team:         team,
		Games:        list,
		LabelsPinned: v.LabelsPinned,
		Request:      v.Request + 1,
	}, nil
}

// SelectGame starts a new outliers request. Requires a selected team.
func (v ViewModel) SelectGame(gameID string) (ViewModel, error) {
	if v.State == StateIdle {
		return v, fmt.Errorf("%w: select a team before a game", ErrInvalidTransition)
	}
	if gameID == "" {
		return v, fmt.Errorf("%w: empty game id", ErrInvalidTransition)
	}

	next := v
	next.State = StateGameSelected
	next.GameID = gameID
	next.Timeline = nil
	next.Error = ""
	next.Request = v.Request + 1
	return next, nil
}

// Loaded completes the request identified by request
func (v ViewModel) Loaded(request uint64, timeline contracts.Timeline) (ViewModel, error) {
	if err := v.expect(request); err != nil {
		return v, err
	}

	tl := timeline.WithLabelsPinned(v.LabelsPinned)
	next := v
	next.State = StateOutliersLoaded
	next.Timeline = &tl
	return next, nil
}

// Failed records a failed request
func (v ViewModel) Failed(request uint64, cause error) (ViewModel, error) {
	if err := v.expect(request); err != nil {
		return v, err
	}

	next := v
	next.State = StateLoadFailed
	if cause != nil {
		next.Error = cause.Error()
	}
	return next, nil
}

// TogglePins flips the all-labels-visible flag. Allowed in every state.
func (v ViewModel) TogglePins() ViewModel {
	next := v
	next.LabelsPinned = !v.LabelsPinned
	if v.Timeline != nil {
		tl := v.Timeline.WithLabelsPinned(next.LabelsPinned)
		next.Timeline = &tl
	}
	return next
}

func (v ViewModel) expect(request uint64) error {
	if v.State != StateGameSelected {
		return fmt.Errorf("%w: no request in flight (state %s)", ErrStaleResult, v.State)
	}
	if request != v.Request {
		return fmt.Errorf("%w: request %d superseded by %d", ErrStaleResult, request, v.Request)
	}
	return nil
}
