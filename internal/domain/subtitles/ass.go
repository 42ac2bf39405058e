package subtitles

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/forPelevin/ayatreel/internal/types"
)

// RenderPlanASS converts a plan into an ASS v4+ script. Each element becomes
// one Dialogue anchored top-centre at its pixel position; \fad carries the
// linear fade-in/fade-out of the element.
func RenderPlanASS(plan types.CompositionPlan) (string, error) {
	if plan.Canvas.Width <= 0 || plan.Canvas.Height <= 0 {
		return "", errors.Wrapf(types.ErrInvalidInput, "subtitles: canvas %dx%d", plan.Canvas.Width, plan.Canvas.Height)
	}

	var b strings.Builder
	b.WriteString(assHeader(plan.Canvas))
	b.WriteString("\n")
	for _, kind := range styleOrder {
		b.WriteString(styleLine(kind, firstStyle(plan, kind)))
	}
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for i, e := range plan.Elements {
		if !(e.End > e.Start) {
			return "", errors.Wrapf(types.ErrInconsistentPlan, "subtitles: element %d has end <= start", i)
		}
		text := dialogueText(e)
		if text == "" {
			continue
		}
		fadeIn, fadeOut := fadeMS(e)
		fmt.Fprintf(&b, "Dialogue: %d,%s,%s,%s,,0,0,0,,{\\an8\\pos(%d,%d)\\fad(%d,%d)\\fs%d}%s\n",
			layerOf(e.Kind),
			assTime(dur(e.Start)),
			assTime(dur(e.End)),
			styleName(e.Kind),
			e.Anchor.X, e.Anchor.Y,
			fadeIn, fadeOut,
			e.Style.FontSize,
			text,
		)
	}
	return b.String(), nil
}

var styleOrder = []types.ElementKind{
	types.KindArabicLine,
	types.KindTranslationLine,
	types.KindReference,
	types.KindChrome,
	types.KindWatermark,
}

func styleName(k types.ElementKind) string {
	switch k {
	case types.KindArabicLine:
		return "Arabic"
	case types.KindTranslationLine:
		return "Translation"
	case types.KindReference:
		return "Reference"
	case types.KindChrome:
		return "Chrome"
	default:
		return "Watermark"
	}
}

// Text tracks sit above decorations when they overlap.
func layerOf(k types.ElementKind) int {
	if k.Cosmetic() {
		return 0
	}
	return 1
}

func firstStyle(plan types.CompositionPlan, kind types.ElementKind) types.Style {
	for _, e := range plan.Elements {
		if e.Kind == kind {
			return e.Style
		}
	}
	return types.Style{FontSize: 40, Color: "#FFFFFF", Font: "Arial"}
}

func styleLine(kind types.ElementKind, st types.Style) string {
	font := st.Font
	if font == "" {
		font = "Arial"
	}
	outline := st.StrokeWidth
	outlineColour := assColour(st.StrokeColor, "&H00000000")
	return fmt.Sprintf("Style: %s, %s, %d, %s, &H000000FF, %s, &H64000000, 0,0,0,0,100,100,0,0,1,%d,0,8, 50,50,0,1\n",
		styleName(kind), font, st.FontSize, assColour(st.Color, "&H00FFFFFF"), outlineColour, outline)
}

func dialogueText(e types.TimedElement) string {
	lines := e.Lines
	if len(lines) == 0 && strings.TrimSpace(e.Text) != "" {
		lines = []string{e.Text}
	}
	var out []string
	for _, l := range lines {
		if l = sanitizeASS(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\\N")
}

// fadeMS truncates fades to whole milliseconds so they never exceed the
// element's window.
func fadeMS(e types.TimedElement) (int, int) {
	return int(e.FadeIn * 1000), int(e.FadeOut * 1000)
}

// assColour converts #RRGGBB into ASS &H00BBGGRR.
func assColour(hex, fallback string) string {
	if len(hex) != 7 || hex[0] != '#' {
		return fallback
	}
	for _, c := range hex[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return fallback
		}
	}
	rr, gg, bb := hex[1:3], hex[3:5], hex[5:7]
	return strings.ToUpper("&H00" + bb + gg + rr)
}

func assHeader(c types.Canvas) string {
	return fmt.Sprintf(strings.TrimSpace(`
[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
WrapStyle: 2
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
`), c.Width, c.Height)
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
