package stats

import (
	"math"
	"strconv"
	"strings"
)

// RoundFloat rounds a float to max 6 decimal places. NaN passes through so
// undefined fractions stay visibly undefined in reports.
func RoundFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	multiplier := math.Pow(10, 6)
	return math.Round(f*multiplier) / multiplier
}

// FormatFloat formats a float with no trailing zeros.
func FormatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	rounded := RoundFloat(f)

	str := strconv.FormatFloat(rounded, 'f', 6, 64)
	str = strings.TrimRight(str, "0")
	str = strings.TrimRight(str, ".")
	return str
}
