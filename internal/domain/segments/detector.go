package segments

import (
	"github.com/pkg/errors"

	"github.com/forPelevin/ayatreel/internal/types"
)

const (
	DefaultTopDB              = 30.0
	DefaultMinSilenceDuration = 0.3
	DefaultSampleRate         = 16000

	// gapTolerance suppresses near-zero silence intervals between ranges.
	gapTolerance = 0.01
)

// Splitter is the amplitude-threshold capability: it returns half-open
// [start, end) sample index ranges that are louder than topDB below the
// reference level, in ascending order.
type Splitter interface {
	NonSilent(samples []float32, topDB float64) [][2]int
}

type Config struct {
	TopDB              float64 `yaml:"top_db"`
	MinSilenceDuration float64 `yaml:"min_silence_duration"`
	SampleRate         int     `yaml:"sample_rate"`
}

func DefaultConfig() Config {
	return Config{
		TopDB:              DefaultTopDB,
		MinSilenceDuration: DefaultMinSilenceDuration,
		SampleRate:         DefaultSampleRate,
	}
}

func (c Config) Validate() error {
	if !(c.TopDB > 0) {
		return errors.Wrap(types.ErrInvalidInput, "segments: top_db must be > 0")
	}
	if c.MinSilenceDuration < 0 {
		return errors.Wrap(types.ErrInvalidInput, "segments: min_silence_duration must be >= 0")
	}
	if c.SampleRate <= 0 {
		return errors.Wrap(types.ErrInvalidInput, "segments: sample_rate must be > 0")
	}
	return nil
}

type Detector struct {
	cfg   Config
	split Splitter
}

func NewDetector(cfg Config, split Splitter) *Detector {
	return &Detector{cfg: cfg, split: split}
}

func (d *Detector) Config() Config { return d.cfg }

// DetectSegments returns the speech intervals of pcm that last at least
// MinSilenceDuration.
func (d *Detector) DetectSegments(pcm types.PCM) ([]types.AudioSegment, error) {
	ranges, err := d.nonSilent(pcm)
	if err != nil {
		return nil, err
	}
	sr := float64(pcm.SampleRate)
	var out []types.AudioSegment
	for _, r := range ranges {
		start := float64(r[0]) / sr
		end := float64(r[1]) / sr
		if end-start < d.cfg.MinSilenceDuration {
			continue
		}
		out = append(out, types.AudioSegment{Start: start, End: end})
	}
	return out, nil
}

// DetectSilenceIntervals returns the complement of the non-silent ranges
// over [0, duration], including leading and trailing gaps.
func (d *Detector) DetectSilenceIntervals(pcm types.PCM) ([]types.Interval, error) {
	ranges, err := d.nonSilent(pcm)
	if err != nil {
		return nil, err
	}
	sr := float64(pcm.SampleRate)
	total := pcm.Duration()

	var out []types.Interval
	prevEnd := 0.0
	for _, r := range ranges {
		start := float64(r[0]) / sr
		if start > prevEnd+gapTolerance {
			out = append(out, types.Interval{Start: prevEnd, End: start})
		}
		prevEnd = float64(r[1]) / sr
	}
	if prevEnd < total-gapTolerance {
		out = append(out, types.Interval{Start: prevEnd, End: total})
	}
	return out, nil
}

func (d *Detector) nonSilent(pcm types.PCM) ([][2]int, error) {
	if len(pcm.Samples) == 0 {
		return nil, errors.Wrap(types.ErrNotFound, "segments: no decoded samples")
	}
	if pcm.SampleRate <= 0 {
		return nil, errors.Wrapf(types.ErrInvalidInput, "segments: sample rate %d", pcm.SampleRate)
	}
	if d.split == nil {
		return nil, errors.New("segments: no splitter configured")
	}
	return d.split.NonSilent(pcm.Samples, d.cfg.TopDB), nil
}

// ValidateSegments reports whether every segment has end > start and, in the
// given order, no segment starts before the previous one ends.
func ValidateSegments(segs []types.AudioSegment) bool {
	for i, s := range segs {
		if !(s.End > s.Start) {
			return false
		}
		if i > 0 && s.Start < segs[i-1].End {
			return false
		}
	}
	return true
}
