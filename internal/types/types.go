package types

// AudioProfile describes one decoded recitation track.
type AudioProfile struct {
	DurationSeconds float64 `json:"duration_seconds"`
}

// TextTiming holds the global anchors of a render, in seconds.
type TextTiming struct {
	ArabStart         float64 `json:"arab_start"`
	ArabFadeIn        float64 `json:"arab_fade_in"`
	TranslationStart  float64 `json:"translation_start"`
	TranslationFadeIn float64 `json:"translation_fade_in"`
	FadeOutStart      float64 `json:"fade_out_start"`
	TotalDuration     float64 `json:"total_duration"`
}

// IsZero reports the degenerate timing returned for non-positive durations.
func (t TextTiming) IsZero() bool { return t == TextTiming{} }

type AudioSegment struct {
	Start           float64 `json:"start"`
	End             float64 `json:"end"`
	TextArab        string  `json:"text_arab,omitempty"`
	TextTranslation string  `json:"text_translation,omitempty"`
}

func (s AudioSegment) Duration() float64 { return s.End - s.Start }

type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type TextChunk struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// WordTiming is one entry of an external word-alignment table.
// Position is the 1-based index of the word in the verse text.
type WordTiming struct {
	Position int `json:"position"`
	StartMS  int `json:"start_ms"`
	EndMS    int `json:"end_ms"`
}

// PCM is mono decoded audio.
type PCM struct {
	Samples    []float32
	SampleRate int
}

func (p PCM) Duration() float64 {
	if p.SampleRate <= 0 {
		return 0
	}
	return float64(len(p.Samples)) / float64(p.SampleRate)
}

type ElementKind string

const (
	KindArabicLine      ElementKind = "arabic_line"
	KindTranslationLine ElementKind = "translation_line"
	KindReference       ElementKind = "reference"
	KindChrome          ElementKind = "chrome"
	KindWatermark       ElementKind = "watermark"
)

// Cosmetic elements may be dropped when they cannot be scheduled; content
// elements may not.
func (k ElementKind) Cosmetic() bool {
	return k != KindArabicLine && k != KindTranslationLine
}

// Anchor is the top-centre point of an element's text block, in canvas pixels.
type Anchor struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Style struct {
	FontSize    int    `json:"font_size" yaml:"font_size"`
	Color       string `json:"color" yaml:"color"`
	Arabic      bool   `json:"arabic" yaml:"arabic"`
	Font        string `json:"font,omitempty" yaml:"font"`
	StrokeColor string `json:"stroke_color,omitempty" yaml:"stroke_color"`
	StrokeWidth int    `json:"stroke_width,omitempty" yaml:"stroke_width"`
}

type TimedElement struct {
	Kind    ElementKind `json:"kind"`
	Text    string      `json:"text,omitempty"`
	Lines   []string    `json:"lines,omitempty"`
	Anchor  Anchor      `json:"anchor"`
	Start   float64     `json:"start"`
	End     float64     `json:"end"`
	FadeIn  float64     `json:"fade_in"`
	FadeOut float64     `json:"fade_out"`
	Style   Style       `json:"style"`
}

func (e TimedElement) Duration() float64 { return e.End - e.Start }

type Canvas struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Strategy names how the Arabic track was split.
type Strategy string

const (
	StrategyWordTimings Strategy = "word_timings"
	StrategySegments    Strategy = "segments"
	StrategySingle      Strategy = "single"
)

// CompositionPlan is the renderer-facing schedule for one video. It owns no
// file handles; Background and Audio are identifiers resolved by the renderer.
type CompositionPlan struct {
	Canvas        Canvas         `json:"canvas"`
	TotalDuration float64        `json:"total_duration"`
	AudioDuration float64        `json:"audio_duration"`
	Timing        TextTiming     `json:"timing"`
	Strategy      Strategy       `json:"strategy"`
	Background    string         `json:"background,omitempty"`
	Audio         string         `json:"audio,omitempty"`
	Elements      []TimedElement `json:"elements"`
}

// ElementsOf returns the elements of one kind, in plan order.
func (p CompositionPlan) ElementsOf(kind ElementKind) []TimedElement {
	var out []TimedElement
	for _, e := range p.Elements {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

type AyatRef struct {
	Surah int `json:"surah"`
	Ayat  int `json:"ayat"`
}

type Ayat struct {
	Ref             AyatRef `json:"ref"`
	SurahName       string  `json:"surah_name"`
	SurahNameArabic string  `json:"surah_name_arabic"`
	TextArab        string  `json:"text_arab"`
	TextTranslation string  `json:"text_translation"`
	AudioURL        string  `json:"audio_url"`
	Qari            string  `json:"qari"`
}

type Manifest struct {
	JobID string         `json:"job_id"`
	Items []ManifestItem `json:"items"`
}

type ManifestItem struct {
	Index       int      `json:"index"`
	Surah       int      `json:"surah,omitempty"`
	Ayat        int      `json:"ayat,omitempty"`
	SurahName   string   `json:"surah_name,omitempty"`
	File        string   `json:"file,omitempty"`
	Plan        string   `json:"plan,omitempty"`
	Subtitles   string   `json:"subtitles,omitempty"`
	Caption     string   `json:"caption,omitempty"`
	DurationSec float64  `json:"duration_sec,omitempty"`
	Strategy    Strategy `json:"strategy,omitempty"`
	Elements    int      `json:"elements,omitempty"`
	Error       string   `json:"error,omitempty"`
}
