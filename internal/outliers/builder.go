package outliers

import (
	"errors"
	"fmt"

	"github.com/wonny/outlierline/internal/contracts"
	"github.com/wonny/outlierline/pkg/config"
)

// Builder turns outlier records into bar descriptors
// ⭐ SSOT: outlier → bar 변환은 여기서만
//
// A Builder holds only immutable policy and is safe for concurrent use.
type Builder struct {
	heights HeightPolicy
	images  *ImageResolver
}

// NewBuilder creates a builder from explicit policies.
// A nil policy or resolver falls back to the defaults (500/100/100 linear, CDN and local logo templates).
func NewBuilder(heights HeightPolicy, images *ImageResolver) *Builder {
	if heights == nil {
		heights, _ = NewLinearDecay(500, 100, 100)
	}
	if images == nil {
		images = NewImageResolver("", "")
	}
	return &Builder{heights: heights, images: images}
}

// NewBuilderFromConfig creates a builder from the bar configuration
func NewBuilderFromConfig(cfg config.BarConfig) (*Builder, error) {
	heights, err := NewHeightPolicy(cfg)
	if err != nil {
		return nil, fmt.Errorf("height policy: %w", err)
	}
	return NewBuilder(heights, NewImageResolver(cfg.PlayerHeadshotTemplate, cfg.TeamLogoTemplate)), nil
}

// Heights exposes the height policy
func (b *Builder) Heights() HeightPolicy {
	return b.heights
}

// Images exposes the image resolver
func (b *Builder) Images() *ImageResolver {
	return b.images
}

// Build maps one record to a bar. It is pure: the record is not modified and
// identical arguments always produce identical descriptors.
//
// A stat key without separator does not fail; the descriptor carries the full
// key with LabelFallback set. Build fails only for a negative rank or when name,
// stat, actual or avg is missing.
func (b *Builder) Build(rec contracts.OutlierRecord, sign contracts.Sign, rank int) (contracts.BarDescriptor, error) {
	if rank < 0 {
		return contracts.BarDescriptor{}, fmt.Errorf("%w: %d", ErrInvalidRank, rank)
	}
	if err := checkRequired(rec); err != nil {
		return contracts.BarDescriptor{}, err
	}

	label, err := ResolveStatLabel(rec.SubjectType, rec.StatKey)
	fallback := errors.Is(err, ErrMalformedStatKey)

	kind := Classify(rec, label)
	actual, avg, suffix := formatValues(kind, label, rec)

	return contracts.BarDescriptor{
		Rank:            rank,
		HeightPx:        b.heights.Height(rank),
		Sign:            sign,
		Image:           b.images.Resolve(rec),
		PrimaryLabel:    rec.Name,
		StatLabel:       label,
		FormattedActual: actual,
		FormattedAvg:    avg,
		AttemptSuffix:   suffix,
		ScoreDisplay:    FormatNative(rec.Score),
		LabelFallback:   fallback,
	}, nil
}

func checkRequired(rec contracts.OutlierRecord) error {
	switch {
	case rec.Name == "":
		return fmt.Errorf("%w: name", ErrMissingField)
	case rec.StatKey == "":
		return fmt.Errorf("%w: stat", ErrMissingField)
	case rec.Actual == nil:
		return fmt.Errorf("%w: actual", ErrMissingField)
	case rec.Average == nil:
		return fmt.Errorf("%w: avg", ErrMissingField)
	}
	return nil
}
