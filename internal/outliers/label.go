package outliers

import (
	"fmt"
	"strings"

	"github.com/wonny/outlierline/internal/contracts"
)

// StatKeySeparator splits "<category> - <label>"
const StatKeySeparator = " - "

// ResolveStatLabel returns the display label for a record's stat key.
// team_vs_team keys are used verbatim. Otherwise the segment after the first
// separator is used; a key without one returns the whole key and ErrMalformedStatKey.
func ResolveStatLabel(subject contracts.SubjectType, statKey string) (string, error) {
	if subject == contracts.SubjectTeamVsTeam {
		return statKey, nil
	}

	parts := strings.SplitN(statKey, StatKeySeparator, 3)
	if len(parts) < 2 {
		return statKey, fmt.Errorf("%w: %q", ErrMalformedStatKey, statKey)
	}
	return parts[1], nil
}
