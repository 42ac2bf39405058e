package timing

import (
	"math"

	"github.com/pkg/errors"

	"github.com/forPelevin/ayatreel/internal/mathx"
	"github.com/forPelevin/ayatreel/internal/types"
)

const (
	MinFade = 0.3
	MaxFade = 1.0

	// MaxArabStart bounds how late the Arabic text may appear after audio start.
	MaxArabStart = 0.5
	// ShortClip is the duration under which translation may overlap the
	// Arabic fade-in by ShortClipTolerance.
	ShortClip          = 3.0
	ShortClipTolerance = 0.1
)

type Config struct {
	MinFade               float64 `yaml:"min_fade"`
	MaxFade               float64 `yaml:"max_fade"`
	FadeRatio             float64 `yaml:"fade_ratio"`
	TranslationStartRatio float64 `yaml:"translation_start_ratio"`
	TranslationEndBuffer  float64 `yaml:"translation_end_buffer"`
	TranslationLead       float64 `yaml:"translation_lead"`
}

func DefaultConfig() Config {
	return Config{
		MinFade:               MinFade,
		MaxFade:               MaxFade,
		FadeRatio:             0.1,
		TranslationStartRatio: 0.7,
		TranslationEndBuffer:  2.0,
		TranslationLead:       0.5,
	}
}

func (c Config) Validate() error {
	if !(c.MinFade > 0) || !mathx.Finite(c.MinFade) {
		return errors.Wrap(types.ErrInvalidInput, "timing: min_fade must be > 0")
	}
	if !(c.MaxFade >= c.MinFade) || !mathx.Finite(c.MaxFade) {
		return errors.Wrap(types.ErrInvalidInput, "timing: max_fade must be >= min_fade")
	}
	if !(c.FadeRatio > 0 && c.FadeRatio <= 1) {
		return errors.Wrap(types.ErrInvalidInput, "timing: fade_ratio must be in (0, 1]")
	}
	if !(c.TranslationStartRatio >= 0 && c.TranslationStartRatio <= 1) {
		return errors.Wrap(types.ErrInvalidInput, "timing: translation_start_ratio must be in [0, 1]")
	}
	if !(c.TranslationEndBuffer >= 0) || !mathx.Finite(c.TranslationEndBuffer) {
		return errors.Wrap(types.ErrInvalidInput, "timing: translation_end_buffer must be >= 0")
	}
	if !(c.TranslationLead >= 0) || !mathx.Finite(c.TranslationLead) {
		return errors.Wrap(types.ErrInvalidInput, "timing: translation_lead must be >= 0")
	}
	return nil
}

// Policy computes the global text anchors of a render. It is a pure value and
// safe for concurrent use.
type Policy struct {
	cfg Config
}

func New(cfg Config) Policy { return Policy{cfg: cfg} }

func (p Policy) Config() Config { return p.cfg }

// CalculateTextTiming returns the anchors for an audio track. Non-positive
// (or non-finite) durations yield the zero TextTiming. The text arguments do
// not change the result yet.
func (p Policy) CalculateTextTiming(audioDuration float64, textArab, textTranslation string) types.TextTiming {
	if !(audioDuration > 0) || math.IsInf(audioDuration, 0) {
		return types.TextTiming{}
	}

	fade := p.FadeFor(audioDuration)

	arabStart := 0.0
	translationStart := math.Max(
		fade+p.cfg.TranslationLead,
		math.Min(audioDuration*p.cfg.TranslationStartRatio, audioDuration-p.cfg.TranslationEndBuffer),
	)

	return types.TextTiming{
		ArabStart:         arabStart,
		ArabFadeIn:        fade,
		TranslationStart:  translationStart,
		TranslationFadeIn: fade,
		FadeOutStart:      math.Max(0, audioDuration-fade),
		TotalDuration:     audioDuration,
	}
}

// FadeFor scales a fade to the length of the window it decorates.
func (p Policy) FadeFor(window float64) float64 {
	return p.ValidateFadeDuration(window * p.cfg.FadeRatio)
}

// ValidateFadeDuration clamps d into [MinFade, MaxFade]. NaN maps to MinFade.
func (p Policy) ValidateFadeDuration(d float64) float64 {
	if math.IsNaN(d) {
		return p.cfg.MinFade
	}
	return mathx.Clamp(d, p.cfg.MinFade, p.cfg.MaxFade)
}

// ValidateTiming checks every TextTiming invariant. The zero timing fails
// because its total duration is not positive.
func (p Policy) ValidateTiming(t types.TextTiming) bool {
	if !(t.TotalDuration > 0) {
		return false
	}
	if t.ArabStart < 0 || t.ArabStart > MaxArabStart {
		return false
	}
	if !p.fadeInBounds(t.ArabFadeIn) || !p.fadeInBounds(t.TranslationFadeIn) {
		return false
	}
	if t.TranslationStart < t.ArabStart {
		return false
	}
	tolerance := 0.0
	if t.TotalDuration < ShortClip {
		tolerance = ShortClipTolerance
	}
	if t.TranslationStart < t.ArabStart+t.ArabFadeIn-tolerance {
		return false
	}
	if t.FadeOutStart > t.TotalDuration {
		return false
	}
	return true
}

func (p Policy) fadeInBounds(d float64) bool {
	return d >= p.cfg.MinFade && d <= p.cfg.MaxFade
}
