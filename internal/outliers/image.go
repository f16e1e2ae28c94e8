package outliers

import (
	"net/url"
	"strings"

	"github.com/wonny/outlierline/internal/contracts"
)

const (
	DefaultPlayerHeadshotTemplate = "https://cdn.nba.com/headshots/nba/latest/1040x760/{id}.png"
	DefaultTeamLogoTemplate       = "logos/{abbr}.svg"

	playerIDPlaceholder = "{id}"
	teamAbbrPlaceholder = "{abbr}"
)

// ImageResolver builds image references from templates. It never fetches them.
type ImageResolver struct {
	playerTemplate string
	teamTemplate   string
}

// NewImageResolver returns a resolver; empty templates use the defaults
func NewImageResolver(playerTemplate, teamTemplate string) *ImageResolver {
	if playerTemplate == "" {
		playerTemplate = DefaultPlayerHeadshotTemplate
	}
	if teamTemplate == "" {
		teamTemplate = DefaultTeamLogoTemplate
	}
	return &ImageResolver{playerTemplate: playerTemplate, teamTemplate: teamTemplate}
}

// Resolve picks the first matching image for a record:
// player headshot, then team logo, then nothing.
func (r *ImageResolver) Resolve(rec contracts.OutlierRecord) contracts.ImageDescriptor {
	if rec.SubjectType == contracts.SubjectPlayer && rec.PlayerID != "" {
		return r.PlayerHeadshot(string(rec.PlayerID))
	}
	if rec.TeamAbbr != "" {
		return r.TeamLogo(rec.TeamAbbr)
	}
	return contracts.ImageDescriptor{}
}

// PlayerHeadshot returns the CDN headshot reference for a player id
func (r *ImageResolver) PlayerHeadshot(playerID string) contracts.ImageDescriptor {
	return contracts.ImageDescriptor{
		Kind: contracts.ImagePlayerHeadshot,
		URL:  strings.ReplaceAll(r.playerTemplate, playerIDPlaceholder, url.PathEscape(playerID)),
	}
}

// TeamLogo returns the local logo reference for a team abbreviation
func (r *ImageResolver) TeamLogo(abbr string) contracts.ImageDescriptor {
	return contracts.ImageDescriptor{
		Kind: contracts.ImageTeamLogo,
		URL:  strings.ReplaceAll(r.teamTemplate, teamAbbrPlaceholder, url.PathEscape(abbr)),
	}
}
