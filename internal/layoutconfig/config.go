package layoutconfig

// Layout is a bar layout file: height policy and image templates
type Layout struct {
	Meta   Meta   `yaml:"meta" json:"meta"`
	Height Height `yaml:"height" json:"height"`
	Images Images `yaml:"images" json:"images"`
}

// Meta 메타 정보
type Meta struct {
	LayoutID string `yaml:"layout_id" json:"layout_id"`
	Version  string `yaml:"version" json:"version"`
}

// Height selects and parameterizes the rank → height policy
type Height struct {
	Policy   string `yaml:"policy" json:"policy"` // linear, table
	Base     int    `yaml:"base" json:"base"`
	Step     int    `yaml:"step" json:"step"`
	Floor    int    `yaml:"floor" json:"floor"`
	Table    []int  `yaml:"table" json:"table"`
	Fallback int    `yaml:"fallback" json:"fallback"`
}

// Images holds the reference templates; "{id}" and "{abbr}" are substituted
type Images struct {
	PlayerHeadshot string `yaml:"player_headshot" json:"player_headshot"`
	TeamLogo       string `yaml:"team_logo" json:"team_logo"`
}
