package analyze

import (
	"math"
	"strconv"
	"strings"
)

// Values far outside everyday magnitudes switch to scientific notation so
// the rendered sets stay readable.
func extremeMagnitude(v float64) bool {
	a := math.Abs(v)
	return a > 1e4 || (a < 1e-4 && v != 0)
}

// fmtShort renders a value compactly: integers without decimals, otherwise
// up to four decimals with trailing zeros trimmed.
func fmtShort(v float64) string {
	if v == 0 {
		v = 0 // drop IEEE negative zero so boundaries never print "-0"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if extremeMagnitude(v) {
		return strconv.FormatFloat(v, 'e', 1, 64)
	}
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// fmtFixed renders the fixed 4-decimal form used for evaluation results.
func fmtFixed(v float64) string {
	if extremeMagnitude(v) {
		return strconv.FormatFloat(v, 'e', 4, 64)
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
