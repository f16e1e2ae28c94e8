package layoutconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/outlierline/pkg/config"
)

const tableLayout = `
meta:
  layout_id: compact
  version: "2"
height:
  policy: table
  table: [420, 340, 260, 180]
  fallback: 120
images:
  team_logo: "/static/logos/{abbr}.png"
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(tableLayout), 0o644))

	layout, raw, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, tableLayout, string(raw))
	assert.Equal(t, "compact", layout.Meta.LayoutID)
	assert.Equal(t, []int{420, 340, 260, 180}, layout.Height.Table)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("meta:\n  layout_id: x\nheight:\n  polcy: table\n"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	layout, err := Parse([]byte(tableLayout))
	require.NoError(t, err)

	bars := config.BarConfig{
		HeightPolicy:           "linear",
		Base:                   500,
		Step:                   100,
		Floor:                  100,
		Table:                  []int{500, 400},
		Fallback:               80,
		PlayerHeadshotTemplate: "https://cdn.nba.com/headshots/nba/latest/1040x760/{id}.png",
		TeamLogoTemplate:       "logos/{abbr}.svg",
	}
	layout.Apply(&bars)

	assert.Equal(t, "table", bars.HeightPolicy)
	assert.Equal(t, []int{420, 340, 260, 180}, bars.Table)
	assert.Equal(t, 120, bars.Fallback)
	assert.Equal(t, 500, bars.Base)
	assert.Equal(t, "/static/logos/{abbr}.png", bars.TeamLogoTemplate)
	assert.Contains(t, bars.PlayerHeadshotTemplate, "cdn.nba.com")

	// the layout keeps its own copy of the table
	bars.Table[0] = 1
	assert.Equal(t, 420, layout.Height.Table[0])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"missing id", "height:\n  policy: linear\n", "meta.layout_id"},
		{"bad policy", "meta:\n  layout_id: x\nheight:\n  policy: log\n", "height.policy"},
		{"negative step", "meta:\n  layout_id: x\nheight:\n  step: -5\n", "height.step"},
		{"floor above base", "meta:\n  layout_id: x\nheight:\n  base: 100\n  floor: 200\n", "height.floor"},
		{"increasing table", "meta:\n  layout_id: x\nheight:\n  table: [300, 400]\n", "height.table[1]"},
		{"zero in table", "meta:\n  layout_id: x\nheight:\n  table: [300, 0]\n", "height.table[1]"},
		{"fallback too tall", "meta:\n  layout_id: x\nheight:\n  table: [300, 200]\n  fallback: 250\n", "height.fallback"},
		{"table policy without table", "meta:\n  layout_id: x\nheight:\n  policy: table\n", "height.table"},
		{"headshot without id", "meta:\n  layout_id: x\nimages:\n  player_headshot: https://x/y.png\n", "images.player_headshot"},
		{"logo without abbr", "meta:\n  layout_id: x\nimages:\n  team_logo: logo.svg\n", "images.team_logo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			var verr ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestHashStable(t *testing.T) {
	a, err := Parse([]byte(tableLayout))
	require.NoError(t, err)
	b, err := Parse([]byte(tableLayout))
	require.NoError(t, err)

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64)

	b.Height.Fallback = 100
	hc, _ := Hash(b)
	assert.NotEqual(t, ha, hc)
}
