package calc

import (
	"math"
	"strconv"
	"strings"
)

// Non-finite markers that can end up in a raw display value.
const (
	markerError    = "Error"
	markerInfinity = "Infinity"
	markerNaN      = "NaN"
)

// IsError reports whether raw carries an error or non-finite marker.
func IsError(raw string) bool {
	return strings.Contains(raw, markerError) ||
		strings.Contains(raw, markerInfinity) ||
		strings.Contains(raw, markerNaN)
}

// formatNumber renders f the way the raw display stores numbers: the
// shortest round-trip decimal, exponent notation outside [1e-6, 1e21).
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return markerNaN
	case math.IsInf(f, 1):
		return markerInfinity
	case math.IsInf(f, -1):
		return "-" + markerInfinity
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseOperand reads a finite number from a raw display value.
func parseOperand(raw string) (float64, bool) {
	if IsError(raw) {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
