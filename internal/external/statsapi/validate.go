package statsapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/outlierline/internal/contracts"
)

// ErrInvalidPayload: the upstream payload cannot be rendered
var ErrInvalidPayload = errors.New("invalid outlier payload")

// gameIDLength is the zero-padded width of league game ids
const gameIDLength = 10

// NormalizeGameID left-pads numeric game ids to ten digits ("22400061" -> "0022400061")
func NormalizeGameID(gameID string) string {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" || len(gameID) >= gameIDLength {
		return gameID
	}
	for _, r := range gameID {
		if r < '0' || r > '9' {
			return gameID
		}
	}
	return strings.Repeat("0", gameIDLength-len(gameID)) + gameID
}

// ValidatePayload checks what the builder assumes: two teams and at least one outlier group.
func ValidatePayload(p *contracts.GamePayload) error {
	if p == nil {
		return fmt.Errorf("%w: empty body", ErrInvalidPayload)
	}
	if len(p.Teams) != 2 {
		return fmt.Errorf("%w: expected 2 teams, got %d", ErrInvalidPayload, len(p.Teams))
	}
	for i, team := range p.Teams {
		if strings.TrimSpace(team) == "" {
			return fmt.Errorf("%w: team %d is blank", ErrInvalidPayload, i)
		}
	}
	if len(p.Outliers) == 0 {
		return fmt.Errorf("%w: no outlier group", ErrInvalidPayload)
	}
	return nil
}
