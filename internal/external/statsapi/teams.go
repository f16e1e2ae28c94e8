package statsapi

import (
	"sort"
	"strings"

	"github.com/wonny/outlierline/internal/contracts"
)

// teamIDs maps NBA abbreviations to league team ids
var teamIDs = map[string]string{
	"ATL": "1610612737", "BOS": "1610612738", "BKN": "1610612751", "CHA": "1610612766",
	"CHI": "1610612741", "CLE": "1610612739", "DAL": "1610612742", "DEN": "1610612743",
	"DET": "1610612765", "GSW": "1610612744", "HOU": "1610612745", "IND": "1610612754",
	"LAC": "1610612746", "LAL": "1610612747", "MEM": "1610612763", "MIA": "1610612748",
	"MIL": "1610612749", "MIN": "1610612750", "NOP": "1610612740", "NYK": "1610612752",
	"OKC": "1610612760", "ORL": "1610612753", "PHI": "1610612755", "PHX": "1610612756",
	"POR": "1610612757", "SAC": "1610612758", "SAS": "1610612759", "TOR": "1610612761",
	"UTA": "1610612762", "WAS": "1610612764",
}

// TeamID returns the league id for an abbreviation, case-insensitively
func TeamID(abbr string) (string, bool) {
	id, ok := teamIDs[strings.ToUpper(strings.TrimSpace(abbr))]
	return id, ok
}

// Teams returns the team directory sorted by abbreviation
func Teams() []contracts.Team {
	teams := make([]contracts.Team, 0, len(teamIDs))
	for abbr, id := range teamIDs {
		teams = append(teams, contracts.Team{Abbr: abbr, ID: id})
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Abbr < teams[j].Abbr })
	return teams
}
