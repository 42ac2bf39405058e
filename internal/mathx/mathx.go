package mathx

import (
	"math"

	"golang.org/x/exp/constraints"
)

func Clamp[T constraints.Ordered](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Finite reports whether x is neither NaN nor ±Inf.
func Finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Round3 rounds to millisecond precision so plans serialize stably.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
