package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/wonny/outlierline/internal/contracts"
)

const (
	defaultWidth = 40
	barGlyph     = "█"
)

// Terminal draws a timeline as horizontal text bars. Bar length is the
// descriptor height scaled so that maxHeight fills width columns.
type Terminal struct {
	w         io.Writer
	width     int
	maxHeight int
	images    bool
}

// NewTerminal creates a renderer. maxHeight is the policy's tallest bar.
func NewTerminal(w io.Writer, maxHeight int) *Terminal {
	if maxHeight <= 0 {
		maxHeight = 1
	}
	return &Terminal{w: w, width: defaultWidth, maxHeight: maxHeight}
}

// WithWidth sets the column count of the tallest bar
func (t *Terminal) WithWidth(width int) *Terminal {
	if width > 0 {
		t.width = width
	}
	return t
}

// WithImages prints image references under each bar
func (t *Terminal) WithImages(show bool) *Terminal {
	t.images = show
	return t
}

// Render writes the whole timeline
func (t *Terminal) Render(tl contracts.Timeline) error {
	p := &printer{w: t.w}

	p.printf("%s  (game %s)\n", header(tl), tl.GameID)
	p.printf("%s\n", strings.Repeat("═", t.width+30))

	t.column(p, "▲ Positive", tl.Positive, tl.LabelsPinned)
	t.column(p, "▼ Negative", tl.Negative, tl.LabelsPinned)

	if len(tl.Rejected) > 0 {
		p.printf("\n⚠️  %d outlier(s) could not be rendered\n", len(tl.Rejected))
		for _, r := range tl.Rejected {
			p.printf("   • %s #%d %s %s: %s\n", r.Sign, r.Rank+1, r.Name, r.StatKey, r.Reason)
		}
	}

	return p.err
}

func (t *Terminal) column(p *printer, title string, bars []contracts.BarDescriptor, pinned bool) {
	p.printf("\n%s\n%s\n", title, strings.Repeat("─", t.width+30))
	if len(bars) == 0 {
		p.printf("   (none)\n")
		return
	}

	for _, bar := range bars {
		p.printf("#%-2d %-*s %s\n", bar.Rank+1, t.width, t.bar(bar.HeightPx), bar.PrimaryLabel)
		if pinned {
			p.printf("    %s  %s (avg %s)  score %s\n", bar.StatLabel, bar.FormattedActual, bar.FormattedAvg, bar.ScoreDisplay)
		} else {
			p.printf("    %s\n", bar.StatLabel)
		}
		if t.images && !bar.Image.IsEmpty() {
			p.printf("    %s\n", bar.Image.URL)
		}
	}
}

// bar always draws at least one glyph so the smallest bar stays visible
func (t *Terminal) bar(height int) string {
	n := height * t.width / t.maxHeight
	if n < 1 {
		n = 1
	}
	if n > t.width {
		n = t.width
	}
	return strings.Repeat(barGlyph, n)
}

// header returns "LAL 112 - 108 BOS", or the matchup when there is no score
func header(tl contracts.Timeline) string {
	if len(tl.Teams) != 2 {
		return strings.Join(tl.Teams, " vs ")
	}
	a, b := tl.Teams[0], tl.Teams[1]
	sa, okA := tl.FinalScore[a]
	sb, okB := tl.FinalScore[b]
	if !okA || !okB {
		return tl.Matchup()
	}
	return fmt.Sprintf("%s %d - %d %s", a, sa, sb, b)
}

// GameTable writes a team's games, most recent first
func GameTable(w io.Writer, games []contracts.GameSummary) error {
	sorted := make([]contracts.GameSummary, len(games))
	copy(sorted, games)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PlayedAfter(sorted[j]) })

	p := &printer{w: w}
	p.printf("%-12s  %-12s  %-16s  %s\n", "GAME ID", "DATE", "MATCHUP", "RESULT")
	p.printf("%s\n", strings.Repeat("─", 50))
	for _, g := range sorted {
		p.printf("%-12s  %-12s  %-16s  %s\n", g.GameID, g.Date, g.Matchup, g.Result)
	}
	return p.err
}

// printer keeps the first write error
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
