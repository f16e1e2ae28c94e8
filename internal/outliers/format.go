package outliers

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/outlierline/internal/contracts"
)

// PercentMarker is the case-sensitive substring that marks a percentage stat key
const PercentMarker = "PCT"

// shotStats have a makes/attempts breakdown
var shotStats = map[string]bool{
	"FG_PCT":  true,
	"FG3_PCT": true,
	"FT_PCT":  true,
}

// Classify returns the stat kind of a record. A key carrying the PCT marker is
// always a percentage, and a shot percentage only when the label is FG_PCT,
// FG3_PCT or FT_PCT. An explicit stat_kind only decides between percentage and
// count for keys without the marker.
func Classify(rec contracts.OutlierRecord, statLabel string) contracts.StatKind {
	if strings.Contains(rec.StatKey, PercentMarker) {
		if shotStats[statLabel] {
			return contracts.StatKindShotPercentage
		}
		return contracts.StatKindPercentage
	}

	switch rec.StatKind {
	case contracts.StatKindPercentage, contracts.StatKindShotPercentage:
		return contracts.StatKindPercentage
	}
	return contracts.StatKindCount
}

// IsPercentage reports whether the kind is rendered as a percentage
func IsPercentage(kind contracts.StatKind) bool {
	return kind == contracts.StatKindPercentage || kind == contracts.StatKindShotPercentage
}

// FormatPercent renders a fraction as a whole percentage, rounding half up: 0.455 -> "46%"
func FormatPercent(fraction float64) string {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return "N/A"
	}
	pct := math.Floor(fraction*100 + 0.5)
	if pct == 0 {
		pct = 0 // no "-0%"
	}
	return strconv.FormatFloat(pct, 'f', 0, 64) + "%"
}

// FormatNative renders a value as-is with the shortest exact representation: 38 -> "38", 24.1 -> "24.1"
func FormatNative(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// AttemptSuffix returns "(made/attempted)" for FG_PCT, FG3_PCT and FT_PCT records that carry both counts
func AttemptSuffix(kind contracts.StatKind, statLabel string, rec contracts.OutlierRecord) string {
	if kind != contracts.StatKindShotPercentage || !shotStats[statLabel] {
		return ""
	}
	if rec.Made == nil || rec.Attempted == nil {
		return ""
	}
	return fmt.Sprintf("(%d/%d)", *rec.Made, *rec.Attempted)
}

// formatValues returns the display strings for actual, average and the attempt suffix
func formatValues(kind contracts.StatKind, statLabel string, rec contracts.OutlierRecord) (actual, avg, suffix string) {
	if !IsPercentage(kind) {
		return FormatNative(*rec.Actual), FormatNative(*rec.Average), ""
	}

	actual = FormatPercent(*rec.Actual)
	avg = FormatPercent(*rec.Average)
	suffix = AttemptSuffix(kind, statLabel, rec)
	if suffix != "" {
		actual += " " + suffix
	}
	return actual, avg, suffix
}
