package checklist

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// leadingNumber matches the numeric prefix a browser's parseFloat accepts.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber reads the leading decimal number of raw, ignoring trailing
// text ("3." -> 3, "12kg" -> 12). ok is false when no number is present.
func ParseNumber(raw string) (v float64, ok bool) {
	m := leadingNumber.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// coerceWeight turns user text into a weight: unparsable or negative -> 0.
func coerceWeight(raw string) float64 {
	v, ok := ParseNumber(raw)
	if !ok || v < 0 {
		return 0
	}
	return v
}

// FormatNumber renders a number without trailing zeros ("0", "2.5").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
