package overlay

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/forPelevin/ayatreel/internal/domain/segments"
	"github.com/forPelevin/ayatreel/internal/domain/textsplit"
	"github.com/forPelevin/ayatreel/internal/domain/timing"
	"github.com/forPelevin/ayatreel/internal/mathx"
	"github.com/forPelevin/ayatreel/internal/types"
)

// Request is everything one plan depends on.
type Request struct {
	AudioDuration   float64
	TextArab        string
	TextTranslation string

	// SurahName and Ayat only feed the reference caption.
	SurahName string
	Ayat      int

	// WordTimings, when present, take priority over Segments.
	WordTimings []types.WordTiming
	Segments    []types.AudioSegment

	// Chrome is optional decorative text (a hook line).
	Chrome string

	Background string
	Audio      string
}

// Scheduler turns a Request into a CompositionPlan. It holds no mutable
// state and is safe for concurrent use.
type Scheduler struct {
	cfg    Config
	policy timing.Policy
	split  *textsplit.Segmenter
}

func NewScheduler(cfg Config, policy timing.Policy, split *textsplit.Segmenter) *Scheduler {
	return &Scheduler{cfg: cfg, policy: policy, split: split}
}

func (s *Scheduler) Config() Config { return s.cfg }

// window is one display interval with the text shown in it.
type window struct {
	start, end float64
	arab       string
	// translation is set only when the translation was split per window.
	translation string
}

// BuildPlan schedules every overlay element for one video.
//
// The Arabic track comes from word timings when present, else from detected
// segments, else from an automatic equal split, and finally from a single
// element anchored on the global TextTiming. Translation chunks share the
// Arabic windows. Reference, chrome and watermark span the whole plan.
func (s *Scheduler) BuildPlan(req Request) (types.CompositionPlan, error) {
	if !mathx.Finite(req.AudioDuration) {
		return types.CompositionPlan{}, errors.Wrapf(types.ErrInvalidInput, "overlay: audio duration %v", req.AudioDuration)
	}

	audioTiming := s.policy.CalculateTextTiming(req.AudioDuration, req.TextArab, req.TextTranslation)
	total := math.Max(req.AudioDuration, s.cfg.MinTotalDuration)
	if !(total > 0) {
		return types.CompositionPlan{}, errors.Wrapf(types.ErrInvalidInput, "overlay: total duration %v", total)
	}

	strategy, windows, err := s.arabicWindows(req, total)
	if err != nil {
		return types.CompositionPlan{}, err
	}

	var elems []types.TimedElement
	if strategy == types.StrategySingle {
		elems = s.singleElements(req, total)
	} else {
		elems, err = s.windowedElements(req, windows)
		if err != nil {
			return types.CompositionPlan{}, err
		}
	}
	elems = append(elems, s.chromeElements(req, total)...)

	elems, err = s.fitElements(elems)
	if err != nil {
		return types.CompositionPlan{}, err
	}
	elems, err = s.layout(elems)
	if err != nil {
		return types.CompositionPlan{}, err
	}

	sort.SliceStable(elems, func(i, j int) bool {
		if elems[i].Start != elems[j].Start {
			return elems[i].Start < elems[j].Start
		}
		return kindRank(elems[i].Kind) < kindRank(elems[j].Kind)
	})

	plan := types.CompositionPlan{
		Canvas:        s.cfg.Layout.Canvas,
		TotalDuration: total,
		AudioDuration: req.AudioDuration,
		Timing:        audioTiming,
		Strategy:      strategy,
		Background:    req.Background,
		Audio:         req.Audio,
		Elements:      elems,
	}
	if err := s.ValidatePlan(plan); err != nil {
		return types.CompositionPlan{}, err
	}
	return plan, nil
}

func (s *Scheduler) arabicWindows(req Request, total float64) (types.Strategy, []window, error) {
	if len(req.WordTimings) > 0 {
		lines, err := s.split.SplitByWordTimings(req.TextArab, req.WordTimings, total)
		if err != nil {
			return "", nil, err
		}
		out := make([]window, len(lines))
		for i, l := range lines {
			out[i] = window{start: l.Start, end: l.End, arab: l.Text}
		}
		return types.StrategyWordTimings, out, nil
	}

	words := len(strings.Fields(req.TextArab))
	if segs := usableSegments(req.Segments, total, words); len(segs) > 0 {
		withText, err := textsplit.SplitTextBySegments(req.TextArab, segs, textsplit.TrackArabic)
		if err != nil {
			return "", nil, err
		}
		// Translation shares the proportional split only when every segment
		// can get at least one word of it.
		if len(strings.Fields(req.TextTranslation)) >= len(withText) {
			withText, err = textsplit.SplitTextBySegments(req.TextTranslation, withText, textsplit.TrackTranslation)
			if err != nil {
				return "", nil, err
			}
		}
		out := make([]window, len(withText))
		for i, sg := range withText {
			out[i] = window{start: sg.Start, end: total, arab: sg.TextArab, translation: sg.TextTranslation}
			if i == 0 {
				out[i].start = 0
			}
			if i > 0 {
				out[i-1].end = sg.Start
			}
		}
		return types.StrategySegments, out, nil
	}

	basis := req.AudioDuration
	if !(basis > 0) {
		basis = total
	}
	if n := s.split.AutoSegmentCount(req.TextArab, basis); n > 1 {
		chunks, err := textsplit.SplitIntoSegments(req.TextArab, n)
		if err != nil {
			return "", nil, err
		}
		if len(chunks) > 1 {
			step := total / float64(len(chunks))
			out := make([]window, len(chunks))
			for i, c := range chunks {
				out[i] = window{start: float64(i) * step, end: float64(i+1) * step, arab: c}
			}
			out[len(out)-1].end = total
			return types.StrategySegments, out, nil
		}
	}
	return types.StrategySingle, nil, nil
}

// usableSegments returns detected segments clipped to [0, total], or nil when
// they are invalid, empty after clipping or more numerous than the words.
func usableSegments(segs []types.AudioSegment, total float64, words int) []types.AudioSegment {
	if len(segs) == 0 || !segments.ValidateSegments(segs) {
		return nil
	}
	var out []types.AudioSegment
	for _, sg := range segs {
		sg.Start = math.Max(0, sg.Start)
		sg.End = math.Min(total, sg.End)
		if sg.End > sg.Start {
			out = append(out, sg)
		}
	}
	if len(out) > max(words, 1) {
		return nil
	}
	return out
}

func (s *Scheduler) singleElements(req Request, total float64) []types.TimedElement {
	tt := s.policy.CalculateTextTiming(total, req.TextArab, req.TextTranslation)
	fade := tt.ArabFadeIn
	// Floors below a few seconds would push the translation past the end.
	translationStart := math.Min(tt.TranslationStart, math.Max(0, total-fade))
	return []types.TimedElement{
		{
			Kind:    types.KindArabicLine,
			Text:    req.TextArab,
			Start:   tt.ArabStart,
			End:     total,
			FadeIn:  tt.ArabFadeIn,
			FadeOut: fade,
		},
		{
			Kind:    types.KindTranslationLine,
			Text:    req.TextTranslation,
			Start:   translationStart,
			End:     total,
			FadeIn:  tt.TranslationFadeIn,
			FadeOut: fade,
		},
	}
}

// windowedElements emits one Arabic element per window and spreads the
// translation over the same windows. With fewer translation chunks than
// windows, each chunk spans a contiguous run of windows.
func (s *Scheduler) windowedElements(req Request, windows []window) ([]types.TimedElement, error) {
	out := make([]types.TimedElement, 0, 2*len(windows))
	for _, w := range windows {
		fade := s.policy.FadeFor(w.end - w.start)
		out = append(out, types.TimedElement{
			Kind:    types.KindArabicLine,
			Text:    w.arab,
			Start:   w.start,
			End:     w.end,
			FadeIn:  fade,
			FadeOut: fade,
		})
	}

	if perWindow(windows) {
		for _, w := range windows {
			fade := s.policy.FadeFor(w.end - w.start)
			out = append(out, types.TimedElement{
				Kind:    types.KindTranslationLine,
				Text:    w.translation,
				Start:   w.start,
				End:     w.end,
				FadeIn:  fade,
				FadeOut: fade,
			})
		}
		return out, nil
	}

	chunks, err := textsplit.SplitIntoSegments(req.TextTranslation, len(windows))
	if err != nil {
		return nil, err
	}
	n, k := len(windows), len(chunks)
	for j, c := range chunks {
		first := j * n / k
		last := (j+1)*n/k - 1
		start, end := windows[first].start, windows[last].end
		fade := s.policy.FadeFor(end - start)
		out = append(out, types.TimedElement{
			Kind:    types.KindTranslationLine,
			Text:    c,
			Start:   start,
			End:     end,
			FadeIn:  fade,
			FadeOut: fade,
		})
	}
	return out, nil
}

func perWindow(windows []window) bool {
	for _, w := range windows {
		if w.translation == "" {
			return false
		}
	}
	return len(windows) > 0
}

func (s *Scheduler) chromeElements(req Request, total float64) []types.TimedElement {
	var out []types.TimedElement
	add := func(kind types.ElementKind, text string) {
		out = append(out, types.TimedElement{
			Kind:    kind,
			Text:    text,
			Start:   0,
			End:     total,
			FadeIn:  s.cfg.ChromeFade,
			FadeOut: s.cfg.ChromeFade,
		})
	}
	if ref := s.Reference(req.SurahName, req.Ayat); ref != "" {
		add(types.KindReference, ref)
	}
	if c := strings.TrimSpace(req.Chrome); c != "" {
		add(types.KindChrome, c)
	}
	if w := strings.TrimSpace(s.cfg.WatermarkText); w != "" {
		add(types.KindWatermark, w)
	}
	return out
}

// Reference formats the reference caption, or "" when nothing identifies the
// verse.
func (s *Scheduler) Reference(surahName string, ayat int) string {
	if strings.TrimSpace(surahName) == "" && ayat <= 0 {
		return ""
	}
	ayatText := ""
	if ayat > 0 {
		ayatText = strconv.Itoa(ayat)
	}
	r := strings.NewReplacer("{surah}", strings.TrimSpace(surahName), "{ayat}", ayatText)
	return strings.TrimSpace(r.Replace(s.cfg.ReferenceFormat))
}
