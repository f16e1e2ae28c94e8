package outliers

import (
	"github.com/wonny/outlierline/internal/contracts"
)

// BuildColumn builds one sign-column. Input order is rank order; nothing is re-sorted.
// A record that cannot be built is reported and skipped, and the remaining
// records keep their input position as rank.
func (b *Builder) BuildColumn(records []contracts.OutlierRecord, sign contracts.Sign) ([]contracts.BarDescriptor, []contracts.RecordError) {
	bars := make([]contracts.BarDescriptor, 0, len(records))
	var rejected []contracts.RecordError

	for rank, rec := range records {
		bar, err := b.Build(rec, sign, rank)
		if err != nil {
			rejected = append(rejected, contracts.RecordError{
				Sign:    sign,
				Rank:    rank,
				Name:    rec.Name,
				StatKey: rec.StatKey,
				Reason:  err.Error(),
			})
			continue
		}
		bars = append(bars, bar)
	}

	return bars, rejected
}

// BuildTimeline builds both columns of a validated payload.
// Only the first outlier group is used; an absent group renders as two empty columns.
func (b *Builder) BuildTimeline(payload contracts.GamePayload, labelsPinned bool) contracts.Timeline {
	group, _ := payload.Group()

	positive, rejectedPos := b.BuildColumn(group.Positive, contracts.SignPositive)
	negative, rejectedNeg := b.BuildColumn(group.Negative, contracts.SignNegative)

	teams := make([]string, len(payload.Teams))
	copy(teams, payload.Teams)

	logos := make([]contracts.ImageDescriptor, 0, len(teams))
	for _, team := range teams {
		logos = append(logos, b.images.TeamLogo(team))
	}

	var score map[string]int
	if payload.FinalScore != nil {
		score = make(map[string]int, len(payload.FinalScore))
		for team, pts := range payload.FinalScore {
			score[team] = pts
		}
	}

	return contracts.Timeline{
		GameID:       payload.GameID,
		Teams:        teams,
		TeamLogos:    logos,
		FinalScore:   score,
		Positive:     positive,
		Negative:     negative,
		Rejected:     append(rejectedPos, rejectedNeg...),
		LabelsPinned: labelsPinned,
	}
}

// LabelFallbacks counts bars rendered with the full stat key as label
func LabelFallbacks(t contracts.Timeline) int {
	n := 0
	for _, col := range [][]contracts.BarDescriptor{t.Positive, t.Negative} {
		for _, bar := range col {
			if bar.LabelFallback {
				n++
			}
		}
	}
	return n
}
