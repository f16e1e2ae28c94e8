package outliers

import (
	"fmt"

	"github.com/wonny/outlierline/pkg/config"
)

// HeightPolicy maps a zero-based rank to a bar height in pixels.
// Implementations are non-increasing in rank and never go below Floor().
type HeightPolicy interface {
	Height(rank int) int
	MaxHeight() int
	Floor() int
}

// LinearDecay is base - rank*step, clamped at floor
type LinearDecay struct {
	base  int
	step  int
	floor int
}

// NewLinearDecay validates and builds a linear policy
func NewLinearDecay(base, step, floor int) (*LinearDecay, error) {
	if floor <= 0 {
		return nil, fmt.Errorf("%w: floor must be > 0, got %d", ErrInvalidHeightPolicy, floor)
	}
	if step < 0 {
		return nil, fmt.Errorf("%w: step must be >= 0, got %d", ErrInvalidHeightPolicy, step)
	}
	if base < floor {
		return nil, fmt.Errorf("%w: base %d below floor %d", ErrInvalidHeightPolicy, base, floor)
	}
	return &LinearDecay{base: base, step: step, floor: floor}, nil
}

func (p *LinearDecay) Height(rank int) int {
	if rank < 0 {
		rank = 0
	}
	// guard against overflow for absurd ranks
	if p.step > 0 && rank > (p.base-p.floor)/p.step+1 {
		return p.floor
	}
	h := p.base - rank*p.step
	if h < p.floor {
		return p.floor
	}
	return h
}

func (p *LinearDecay) MaxHeight() int { return p.base }
func (p *LinearDecay) Floor() int     { return p.floor }

// StepTable looks heights up by rank; ranks past the table get the fallback
type StepTable struct {
	heights  []int
	fallback int
}

// NewStepTable validates and builds a lookup table policy
func NewStepTable(heights []int, fallback int) (*StepTable, error) {
	if len(heights) == 0 {
		return nil, fmt.Errorf("%w: step table is empty", ErrInvalidHeightPolicy)
	}
	if fallback <= 0 {
		return nil, fmt.Errorf("%w: fallback must be > 0, got %d", ErrInvalidHeightPolicy, fallback)
	}
	for i, h := range heights {
		if i > 0 && h > heights[i-1] {
			return nil, fmt.Errorf("%w: height at rank %d (%d) exceeds rank %d (%d)",
				ErrInvalidHeightPolicy, i, h, i-1, heights[i-1])
		}
	}
	if last := heights[len(heights)-1]; fallback > last {
		return nil, fmt.Errorf("%w: fallback %d exceeds last table entry %d", ErrInvalidHeightPolicy, fallback, last)
	}

	table := make([]int, len(heights))
	copy(table, heights)
	return &StepTable{heights: table, fallback: fallback}, nil
}

func (p *StepTable) Height(rank int) int {
	if rank < 0 {
		rank = 0
	}
	if rank < len(p.heights) {
		return p.heights[rank]
	}
	return p.fallback
}

func (p *StepTable) MaxHeight() int { return p.heights[0] }
func (p *StepTable) Floor() int     { return p.fallback }

// NewHeightPolicy builds the policy selected by configuration
func NewHeightPolicy(cfg config.BarConfig) (HeightPolicy, error) {
	switch cfg.HeightPolicy {
	case "", "linear":
		return NewLinearDecay(cfg.Base, cfg.Step, cfg.Floor)
	case "table":
		return NewStepTable(cfg.Table, cfg.Fallback)
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", ErrInvalidHeightPolicy, cfg.HeightPolicy)
	}
}
