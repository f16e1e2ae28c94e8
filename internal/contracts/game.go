package contracts

import (
	"strings"
	"time"
)

// gameDateLayouts: the upstream GAME_DATE spelling first, ISO as fallback
var gameDateLayouts = []string{
	"Jan 2, 2006",
	"2006-01-02",
	time.RFC3339,
}

// GameSummary is one entry of a team's game list (dropdown source)
type GameSummary struct {
	GameID   string `json:"game_id"`
	Date     string `json:"date"`
	Matchup  string `json:"matchup"`
	Result   string `json:"result,omitempty"` // W, L or empty before the game ends
	HomeAway string `json:"home_away,omitempty"`
}

// Label is the dropdown text, e.g. "LAL vs. BOS (OCT 22, 2024)"
func (g GameSummary) Label() string {
	if g.Date == "" {
		return g.Matchup
	}
	return g.Matchup + " (" + g.Date + ")"
}

// PlayedOn parses Date ("OCT 22, 2024" or ISO)
func (g GameSummary) PlayedOn() (time.Time, bool) {
	date := strings.TrimSpace(g.Date)
	if len(date) > 1 && date[0] >= 'A' && date[0] <= 'z' {
		// "OCT 22, 2024" -> "Oct 22, 2024"
		date = strings.ToUpper(date[:1]) + strings.ToLower(date[1:])
	}
	for _, layout := range gameDateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PlayedAfter reports whether g was played after o. Games with a parseable
// date come before ones without; two unparseable dates compare as strings.
func (g GameSummary) PlayedAfter(o GameSummary) bool {
	gt, gok := g.PlayedOn()
	ot, ook := o.PlayedOn()
	switch {
	case gok && ook:
		return gt.After(ot)
	case gok != ook:
		return gok
	default:
		return g.Date > o.Date
	}
}

// Team is an entry of the team directory
type Team struct {
	Abbr string `json:"abbr"`
	ID   string `json:"id"`
}
