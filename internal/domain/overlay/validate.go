package overlay

import (
	"math"

	"github.com/pkg/errors"

	"github.com/forPelevin/ayatreel/internal/mathx"
	"github.com/forPelevin/ayatreel/internal/types"
)

// fadeEpsilon absorbs float noise when comparing fade sums to durations.
const fadeEpsilon = 1e-9

// fitElements enforces per-element invariants. Fades that do not fit their
// window are scaled down by the same factor. A content element with an empty
// window is an inconsistency; a cosmetic one is dropped.
func (s *Scheduler) fitElements(elems []types.TimedElement) ([]types.TimedElement, error) {
	out := elems[:0]
	for _, e := range elems {
		if !(e.End > e.Start) || !mathx.Finite(e.Start) || !mathx.Finite(e.End) {
			if e.Kind.Cosmetic() {
				continue
			}
			return nil, errors.Wrapf(types.ErrInconsistentPlan, "overlay: %s window [%v, %v]", e.Kind, e.Start, e.End)
		}
		e.FadeIn = math.Max(0, e.FadeIn)
		e.FadeOut = math.Max(0, e.FadeOut)
		d := e.Duration()
		if sum := e.FadeIn + e.FadeOut; sum > d {
			scale := d / sum
			e.FadeIn *= scale
			e.FadeOut *= scale
		}
		out = append(out, e)
	}
	return out, nil
}

// ValidatePlan checks a finished plan: positive total no shorter than the
// configured floor and the audio, elements inside [0, total] with end > start
// and fades that fit their window.
func (s *Scheduler) ValidatePlan(plan types.CompositionPlan) error {
	want := math.Max(plan.AudioDuration, s.cfg.MinTotalDuration)
	if !(plan.TotalDuration > 0) || math.Abs(plan.TotalDuration-want) > fadeEpsilon {
		return errors.Wrapf(types.ErrInconsistentPlan, "overlay: total %v, want %v", plan.TotalDuration, want)
	}
	for i, e := range plan.Elements {
		if !(e.End > e.Start) {
			return errors.Wrapf(types.ErrInconsistentPlan, "overlay: element %d (%s) has end <= start", i, e.Kind)
		}
		if e.Start < 0 || e.End > plan.TotalDuration+fadeEpsilon {
			return errors.Wrapf(types.ErrInconsistentPlan, "overlay: element %d (%s) outside [0, %v]", i, e.Kind, plan.TotalDuration)
		}
		if e.FadeIn < 0 || e.FadeOut < 0 || e.FadeIn+e.FadeOut > e.Duration()+fadeEpsilon {
			return errors.Wrapf(types.ErrInconsistentPlan, "overlay: element %d (%s) fades exceed window", i, e.Kind)
		}
	}
	return nil
}
