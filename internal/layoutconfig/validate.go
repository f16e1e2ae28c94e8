package layoutconfig

import (
	"fmt"
	"strings"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the constraints the builder relies on.
// Zero values mean "keep the environment setting" and pass.
func Validate(l *Layout) error {
	if l.Meta.LayoutID == "" {
		return ValidationError{"meta.layout_id", "required"}
	}

	h := l.Height
	switch h.Policy {
	case "", "linear", "table":
	default:
		return ValidationError{"height.policy", "must be linear or table"}
	}

	for field, v := range map[string]int{
		"height.base":     h.Base,
		"height.step":     h.Step,
		"height.floor":    h.Floor,
		"height.fallback": h.Fallback,
	} {
		if v < 0 {
			return ValidationError{field, "must be >= 0"}
		}
	}

	if h.Base > 0 && h.Floor > h.Base {
		return ValidationError{"height.floor", "must not exceed height.base"}
	}

	// table: strictly positive, non-increasing
	for i, v := range h.Table {
		if v <= 0 {
			return ValidationError{fmt.Sprintf("height.table[%d]", i), "must be > 0"}
		}
		if i > 0 && v > h.Table[i-1] {
			return ValidationError{fmt.Sprintf("height.table[%d]", i), "must not exceed the previous entry"}
		}
	}
	if n := len(h.Table); n > 0 && h.Fallback > h.Table[n-1] {
		return ValidationError{"height.fallback", "must not exceed the last table entry"}
	}
	if h.Policy == "table" && len(h.Table) == 0 {
		return ValidationError{"height.table", "required for the table policy"}
	}

	if t := l.Images.PlayerHeadshot; t != "" && !strings.Contains(t, "{id}") {
		return ValidationError{"images.player_headshot", "must contain {id}"}
	}
	if t := l.Images.TeamLogo; t != "" && !strings.Contains(t, "{abbr}") {
		return ValidationError{"images.team_logo", "must contain {abbr}"}
	}

	return nil
}
