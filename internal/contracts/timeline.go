package contracts

// RecordError describes a record that could not be turned into a bar
type RecordError struct {
	Sign    Sign   `json:"sign"`
	Rank    int    `json:"rank"`
	Name    string `json:"name,omitempty"`
	StatKey string `json:"stat,omitempty"`
	Reason  string `json:"reason"`
}

// Timeline is the view-model of one game's outlier timeline
type Timeline struct {
	GameID     string            `json:"game_id"`
	Teams      []string          `json:"teams"`
	TeamLogos  []ImageDescriptor `json:"team_logos"`
	FinalScore map[string]int    `json:"final_score,omitempty"`

	Positive []BarDescriptor `json:"positive"`
	Negative []BarDescriptor `json:"negative"`
	Rejected []RecordError   `json:"rejected,omitempty"`

	// LabelsPinned: every label visible vs click-to-reveal. UI state only.
	LabelsPinned bool `json:"labels_pinned"`
}

// WithLabelsPinned returns a copy with the pin flag set
func (t Timeline) WithLabelsPinned(pinned bool) Timeline {
	t.LabelsPinned = pinned
	return t
}

// TogglePins returns a copy with the pin flag flipped
func (t Timeline) TogglePins() Timeline {
	return t.WithLabelsPinned(!t.LabelsPinned)
}

// Matchup returns "A vs B" for headers
func (t Timeline) Matchup() string {
	if len(t.Teams) < 2 {
		return ""
	}
	return t.Teams[0] + " vs " + t.Teams[1]
}
