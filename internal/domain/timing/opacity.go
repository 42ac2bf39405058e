package timing

import (
	"math"

	"github.com/forPelevin/ayatreel/internal/mathx"
	"github.com/forPelevin/ayatreel/internal/types"
)

// Opacity is the fade curve every renderer must apply: zero outside
// [start, end], linear ramps inside the fade windows, one otherwise. It is
// total over all t and never leaves [0, 1]. Non-positive fades disable the
// corresponding ramp.
func Opacity(t, start, end, fadeIn, fadeOut float64) float64 {
	if math.IsNaN(t) || math.IsNaN(start) || math.IsNaN(end) || t < start || t > end {
		return 0
	}
	if fadeIn > 0 && t < start+fadeIn {
		return mathx.Clamp((t-start)/fadeIn, 0, 1)
	}
	if fadeOut > 0 && t > end-fadeOut {
		return mathx.Clamp((end-t)/fadeOut, 0, 1)
	}
	return 1
}

// ElementOpacity applies Opacity to a scheduled element.
func ElementOpacity(e types.TimedElement, t float64) float64 {
	return Opacity(t, e.Start, e.End, e.FadeIn, e.FadeOut)
}
