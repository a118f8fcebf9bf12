// Package numeric provides rounding, step formatting, and the percentile
// interpolation convention used across the computation engines.
package numeric

import (
	"math"
	"strconv"
	"strings"
)

// Round rounds x to the given number of decimal places.
func Round(x float64, decimals int) float64 {
	ratio := math.Pow(10, float64(decimals))
	return math.Round(x*ratio) / ratio
}

// Format renders x rounded to the given precision with trailing zeros
// trimmed, for use inside derivation steps.
func Format(x float64, decimals int) string {
	return strconv.FormatFloat(Round(x, decimals), 'f', -1, 64)
}

// FormatSlice renders a slice as "[a, b, c]" with each element formatted at
// the given precision.
func FormatSlice(xs []float64, decimals int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = Format(x, decimals)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Join renders a slice as "a + b + c" for sum derivation steps.
func Join(xs []float64, sep string, decimals int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = Format(x, decimals)
	}
	return strings.Join(parts, sep)
}

// Percentile computes the p-th percentile (0 <= p <= 100) of sorted data by
// linear interpolation between order statistics: the value at fractional rank
// p/100*(n-1). This is the numpy default convention; other conventions
// (nearest-rank, empirical CDF) give different answers, so this choice is
// fixed for reproducibility.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		return sorted[0]
	}
	if hi >= n {
		return sorted[n-1]
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
