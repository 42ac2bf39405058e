package energy

import "math"

const (
	DefaultFrameLength = 2048
	DefaultHopLength   = 512

	// amin floors power before taking the log.
	amin = 1e-10
)

// Splitter marks frames whose mean power is within topDB of the loudest
// frame as non-silent. Frames are centred on multiples of the hop and
// zero-padded at the edges.
type Splitter struct {
	FrameLength int
	HopLength   int
}

func New() *Splitter {
	return &Splitter{FrameLength: DefaultFrameLength, HopLength: DefaultHopLength}
}

// NonSilent returns [start, end) sample ranges in ascending order.
func (s *Splitter) NonSilent(samples []float32, topDB float64) [][2]int {
	if len(samples) == 0 {
		return nil
	}
	power := s.framePower(samples)

	ref := 0.0
	for _, p := range power {
		ref = math.Max(ref, p)
	}
	refDB := 10 * math.Log10(math.Max(ref, amin))

	loud := make([]bool, len(power))
	for i, p := range power {
		loud[i] = 10*math.Log10(math.Max(p, amin))-refDB > -topDB
	}

	var out [][2]int
	for i := 0; i < len(loud); i++ {
		if !loud[i] {
			continue
		}
		j := i
		for j+1 < len(loud) && loud[j+1] {
			j++
		}
		start := min(i*s.HopLength, len(samples))
		end := min((j+1)*s.HopLength, len(samples))
		if i == 0 {
			start = 0
		}
		if j == len(loud)-1 {
			end = len(samples)
		}
		if end > start {
			out = append(out, [2]int{start, end})
		}
		i = j
	}
	return out
}

// framePower returns the mean squared amplitude of every centred frame.
func (s *Splitter) framePower(samples []float32) []float64 {
	n := len(samples)
	prefix := make([]float64, n+1)
	for i, v := range samples {
		x := float64(v)
		prefix[i+1] = prefix[i] + x*x
	}
	half := s.FrameLength / 2
	frames := 1 + n/s.HopLength
	out := make([]float64, frames)
	for f := range out {
		lo := max(f*s.HopLength-half, 0)
		hi := min(f*s.HopLength+half, n)
		if hi > lo {
			out[f] = (prefix[hi] - prefix[lo]) / float64(s.FrameLength)
		}
	}
	return out
}
