package contracts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SubjectType identifies who an outlier is about
type SubjectType string

const (
	SubjectPlayer     SubjectType = "player"
	SubjectTeam       SubjectType = "team"
	SubjectTeamVsTeam SubjectType = "team_vs_team"
)

// Sign is the sign-column a bar belongs to
type Sign string

const (
	SignPositive Sign = "positive"
	SignNegative Sign = "negative"
)

// StatKind is the optional explicit classification of a stat.
// Empty means the payload predates the field and the stat key decides.
type StatKind string

const (
	StatKindUnknown        StatKind = ""
	StatKindCount          StatKind = "count"
	StatKindPercentage     StatKind = "percentage"
	StatKindShotPercentage StatKind = "shot_percentage"
)

// ID is an identifier the upstream may encode as either a JSON number or string
type ID string

// UnmarshalJSON accepts 1629630, "1629630" and null
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	// pandas exports integral ids as 1629630.0
	if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
		*id = ID(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

// Count is a whole number the upstream may encode as 26, 26.0 or "26"
type Count int

// UnmarshalJSON accepts integral numbers in any of those spellings
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("count must be a number: %w", err)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("count must be a whole number, got %s", data)
	}
	*c = Count(f)
	return nil
}

// OutlierRecord is one subject whose stat deviated from its season average
type OutlierRecord struct {
	Name        string      `json:"name"`
	SubjectType SubjectType `json:"type"`
	StatKey     string      `json:"stat"`
	StatKind    StatKind    `json:"stat_kind,omitempty"`

	Actual  *float64 `json:"actual"`
	Average *float64 `json:"avg"`
	Score   float64  `json:"score"`

	PlayerID ID     `json:"player_id,omitempty"`
	TeamAbbr string `json:"team_abbr,omitempty"`
	Team     string `json:"team,omitempty"`

	// Shot breakdown, only meaningful for FG/3P/FT percentages
	Made      *Count `json:"made,omitempty"`
	Attempted *Count `json:"attempted,omitempty"`
}

// OutlierGroup holds both sign-columns. Slice order is the ranking.
type OutlierGroup struct {
	Positive []OutlierRecord `json:"positive"`
	Negative []OutlierRecord `json:"negative"`
}

// GamePayload is the upstream per-game outlier document
type GamePayload struct {
	GameID     string         `json:"game_id"`
	Teams      []string       `json:"teams"`
	FinalScore map[string]int `json:"final_score,omitempty"`
	Outliers   []OutlierGroup `json:"outliers"`
}

// Group returns the single outlier group of the payload.
// Multi-game arrays are not supported; only the first element is used.
func (p *GamePayload) Group() (OutlierGroup, bool) {
	if len(p.Outliers) == 0 {
		return OutlierGroup{}, false
	}
	return p.Outliers[0], true
}

// ImageKind tells a renderer what kind of picture a bar carries
type ImageKind string

const (
	ImageNone           ImageKind = ""
	ImagePlayerHeadshot ImageKind = "player_headshot"
	ImageTeamLogo       ImageKind = "team_logo"
)

// ImageDescriptor is a resolved image reference. The URL is never fetched or validated.
type ImageDescriptor struct {
	Kind ImageKind `json:"kind,omitempty"`
	URL  string    `json:"url,omitempty"`
}

// IsEmpty reports whether no image was resolved
func (d ImageDescriptor) IsEmpty() bool {
	return d.Kind == ImageNone
}

// BarDescriptor is a renderer-agnostic description of one bar
type BarDescriptor struct {
	Rank            int             `json:"rank"`
	HeightPx        int             `json:"height_px"`
	Sign            Sign            `json:"sign"`
	Image           ImageDescriptor `json:"image"`
	PrimaryLabel    string          `json:"primary_label"`
	StatLabel       string          `json:"stat_label"`
	FormattedActual string          `json:"formatted_actual"`
	FormattedAvg    string          `json:"formatted_avg"`
	AttemptSuffix   string          `json:"attempt_suffix,omitempty"`
	ScoreDisplay    string          `json:"score_display"`

	// LabelFallback is set when the stat key had no " - " separator
	LabelFallback bool `json:"label_fallback,omitempty"`
}
