package overlay

import (
	"regexp"

	"github.com/pkg/errors"

	"github.com/forPelevin/ayatreel/internal/types"
)

const (
	// MinGap is the smallest vertical distance between stacked blocks, in pixels.
	MinGap = 25
	// MinFontSize bounds the shrink applied when the stack does not fit.
	MinFontSize = 8
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// BlockStyle is the look of one stacked block.
type BlockStyle struct {
	Style     types.Style `yaml:"style"`
	WrapChars int         `yaml:"wrap_chars"`
}

type Layout struct {
	Canvas       types.Canvas `yaml:"canvas"`
	TopMargin    int          `yaml:"top_margin"`
	BottomMargin int          `yaml:"bottom_margin"`
	Gap          int          `yaml:"gap"`
	LineHeight   float64      `yaml:"line_height"`
}

type Config struct {
	Layout      Layout     `yaml:"layout"`
	Arabic      BlockStyle `yaml:"arabic"`
	Translation BlockStyle `yaml:"translation"`
	Reference   BlockStyle `yaml:"reference"`
	Chrome      BlockStyle `yaml:"chrome"`
	Watermark   BlockStyle `yaml:"watermark"`

	// MinTotalDuration floors the plan length so very short ayat still
	// produce a watchable video.
	MinTotalDuration float64 `yaml:"min_total_duration"`
	ChromeFade       float64 `yaml:"chrome_fade"`
	// ReferenceFormat supports {surah} and {ayat} placeholders.
	ReferenceFormat string `yaml:"reference_format"`
	WatermarkText   string `yaml:"watermark_text"`
}

func DefaultConfig() Config {
	return Config{
		Layout: Layout{
			Canvas:       types.Canvas{Width: 1080, Height: 1920},
			TopMargin:    320,
			BottomMargin: 360,
			Gap:          40,
			LineHeight:   1.3,
		},
		Arabic: BlockStyle{
			Style:     types.Style{FontSize: 60, Color: "#FFFFFF", Arabic: true, Font: "Amiri", StrokeColor: "#000000", StrokeWidth: 2},
			WrapChars: 30,
		},
		Translation: BlockStyle{
			Style:     types.Style{FontSize: 40, Color: "#FFFFFF", Font: "Arial", StrokeColor: "#000000", StrokeWidth: 1},
			WrapChars: 40,
		},
		Reference: BlockStyle{
			Style:     types.Style{FontSize: 32, Color: "#FFD54F", Font: "Arial", StrokeColor: "#000000", StrokeWidth: 1},
			WrapChars: 40,
		},
		Chrome: BlockStyle{
			Style:     types.Style{FontSize: 34, Color: "#FFFFFF", Font: "Arial", StrokeColor: "#000000", StrokeWidth: 1},
			WrapChars: 34,
		},
		Watermark: BlockStyle{
			Style:     types.Style{FontSize: 24, Color: "#DDDDDD", Font: "Arial"},
			WrapChars: 40,
		},
		MinTotalDuration: 10,
		ChromeFade:       0.5,
		ReferenceFormat:  "QS. {surah}: {ayat}",
	}
}

func (c Config) Validate() error {
	l := c.Layout
	if l.Canvas.Width <= 0 || l.Canvas.Height <= 0 {
		return errors.Wrap(types.ErrInvalidInput, "overlay: canvas must be positive")
	}
	if l.TopMargin < 0 || l.BottomMargin < 0 || l.TopMargin+l.BottomMargin >= l.Canvas.Height {
		return errors.Wrap(types.ErrInvalidInput, "overlay: margins leave no room")
	}
	if l.Gap < MinGap {
		return errors.Wrapf(types.ErrInvalidInput, "overlay: gap must be >= %d", MinGap)
	}
	if l.LineHeight < 1 {
		return errors.Wrap(types.ErrInvalidInput, "overlay: line_height must be >= 1")
	}
	blocks := map[string]BlockStyle{
		"arabic":      c.Arabic,
		"translation": c.Translation,
		"reference":   c.Reference,
		"chrome":      c.Chrome,
		"watermark":   c.Watermark,
	}
	for name, b := range blocks {
		if b.Style.FontSize < MinFontSize {
			return errors.Wrapf(types.ErrInvalidInput, "overlay: %s font_size must be >= %d", name, MinFontSize)
		}
		if b.WrapChars < 1 {
			return errors.Wrapf(types.ErrInvalidInput, "overlay: %s wrap_chars must be >= 1", name)
		}
		if !hexColor.MatchString(b.Style.Color) {
			return errors.Wrapf(types.ErrInvalidInput, "overlay: %s color %q is not #RRGGBB", name, b.Style.Color)
		}
		if b.Style.StrokeColor != "" && !hexColor.MatchString(b.Style.StrokeColor) {
			return errors.Wrapf(types.ErrInvalidInput, "overlay: %s stroke_color %q is not #RRGGBB", name, b.Style.StrokeColor)
		}
	}
	if !(c.MinTotalDuration > 0) {
		return errors.Wrap(types.ErrInvalidInput, "overlay: min_total_duration must be > 0")
	}
	if c.ChromeFade < 0 {
		return errors.Wrap(types.ErrInvalidInput, "overlay: chrome_fade must be >= 0")
	}
	return nil
}

func (c Config) block(kind types.ElementKind) BlockStyle {
	switch kind {
	case types.KindArabicLine:
		return c.Arabic
	case types.KindTranslationLine:
		return c.Translation
	case types.KindReference:
		return c.Reference
	case types.KindChrome:
		return c.Chrome
	default:
		return c.Watermark
	}
}
