package textsplit

import (
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/forPelevin/ayatreel/internal/mathx"
	"github.com/forPelevin/ayatreel/internal/types"
)

// Track selects which text field of an AudioSegment a split writes to.
type Track int

const (
	TrackArabic Track = iota
	TrackTranslation
)

type Config struct {
	SecondsPerSegment float64 `yaml:"seconds_per_segment"`
	WordsPerSegment   int     `yaml:"words_per_segment"`
	MaxSegments       int     `yaml:"max_segments"`
	MinWordsPerLine   int     `yaml:"min_words_per_line"`
	MaxWordsPerLine   int     `yaml:"max_words_per_line"`
	// Lead shifts word-timed lines earlier so text lands slightly before
	// the spoken word.
	Lead float64 `yaml:"lead"`
}

func DefaultConfig() Config {
	return Config{
		SecondsPerSegment: 2.5,
		WordsPerSegment:   4,
		MaxSegments:       8,
		MinWordsPerLine:   3,
		MaxWordsPerLine:   4,
		Lead:              0.08,
	}
}

func (c Config) Validate() error {
	switch {
	case !(c.SecondsPerSegment > 0):
		return errors.Wrap(types.ErrInvalidInput, "textsplit: seconds_per_segment must be > 0")
	case c.WordsPerSegment < 1:
		return errors.Wrap(types.ErrInvalidInput, "textsplit: words_per_segment must be >= 1")
	case c.MaxSegments < 1:
		return errors.Wrap(types.ErrInvalidInput, "textsplit: max_segments must be >= 1")
	case c.MinWordsPerLine < 1 || c.MaxWordsPerLine < c.MinWordsPerLine:
		return errors.Wrap(types.ErrInvalidInput, "textsplit: words per line bounds")
	case c.Lead < 0 || c.Lead > 0.5:
		return errors.Wrap(types.ErrInvalidInput, "textsplit: lead must be in [0, 0.5]")
	}
	return nil
}

type Segmenter struct {
	cfg Config
}

func New(cfg Config) *Segmenter {
	return &Segmenter{cfg: cfg}
}

func (s *Segmenter) Config() Config { return s.cfg }

// SplitIntoSegments splits text into min(n, words) chunks of near-equal word
// count. The first len(words)%n chunks carry one extra word.
func SplitIntoSegments(text string, n int) ([]string, error) {
	if n <= 0 {
		return nil, errors.Wrapf(types.ErrInvalidInput, "textsplit: %d segments requested", n)
	}
	words := strings.Fields(text)
	if n > len(words) {
		n = len(words)
	}
	if n <= 1 {
		return []string{text}, nil
	}

	base := len(words) / n
	extra := len(words) % n
	out := make([]string, 0, n)
	idx := 0
	for i := 0; i < n; i++ {
		size := base
		if i < extra {
			size++
		}
		out = append(out, strings.Join(words[idx:idx+size], " "))
		idx += size
	}
	return out, nil
}

// SplitTextBySegments attaches a share of text to each segment, proportional
// to the segment's duration. With at least as many words as segments every
// segment gets one word or more; rounding leftovers go to the last segment.
func SplitTextBySegments(text string, segs []types.AudioSegment, track Track) ([]types.AudioSegment, error) {
	if len(segs) == 0 {
		return nil, errors.Wrap(types.ErrInvalidInput, "textsplit: no segments")
	}
	total := 0.0
	for _, sg := range segs {
		total += sg.Duration()
	}
	if !(total > 0) || !mathx.Finite(total) {
		return nil, errors.Wrapf(types.ErrInvalidInput, "textsplit: total segment duration %v", total)
	}

	words := strings.Fields(text)
	out := make([]types.AudioSegment, len(segs))
	copy(out, segs)

	idx := 0
	for i, sg := range segs {
		n := int(math.Round(float64(len(words)) * sg.Duration() / total))
		if n < 1 {
			n = 1
		}
		// Keep one word for each later segment while there are enough.
		if limit := len(words) - idx - (len(segs) - i - 1); limit >= 1 && n > limit {
			n = limit
		}
		end := idx + n
		if end > len(words) {
			end = len(words)
		}
		setText(&out[i], strings.Join(words[idx:end], " "), track)
		idx = end
	}
	if idx < len(words) {
		last := &out[len(out)-1]
		rest := strings.Join(words[idx:], " ")
		cur := textOf(*last, track)
		if cur != "" {
			rest = cur + " " + rest
		}
		setText(last, rest, track)
	}
	return out, nil
}

func setText(sg *types.AudioSegment, text string, track Track) {
	if track == TrackTranslation {
		sg.TextTranslation = text
		return
	}
	sg.TextArab = text
}

func textOf(sg types.AudioSegment, track Track) string {
	if track == TrackTranslation {
		return sg.TextTranslation
	}
	return sg.TextArab
}

// AutoSegmentCount targets roughly SecondsPerSegment of audio and
// WordsPerSegment words per chunk, bounded to [1, MaxSegments].
func (s *Segmenter) AutoSegmentCount(text string, audioDuration float64) int {
	if !mathx.Finite(audioDuration) || audioDuration <= 0 {
		return 1
	}
	byDuration := int(math.Round(audioDuration / s.cfg.SecondsPerSegment))
	words := len(strings.Fields(text))
	byWords := (words + s.cfg.WordsPerSegment - 1) / s.cfg.WordsPerSegment
	return mathx.Clamp(min(byDuration, byWords), 1, s.cfg.MaxSegments)
}

// WordsPerLine is the line size used for word-timed display.
func (s *Segmenter) WordsPerLine(words int) int {
	return mathx.Clamp(words/3, s.cfg.MinWordsPerLine, s.cfg.MaxWordsPerLine)
}

// SplitByWordTimings groups the words of text into lines and times each line
// from the alignment table. A line starts Lead seconds before its first
// aligned word and ends where the next line starts; the last line ends at
// total. Starts never decrease and never exceed total. Lines that collapse
// to zero length are merged into their neighbour.
func (s *Segmenter) SplitByWordTimings(text string, timings []types.WordTiming, total float64) ([]types.TextChunk, error) {
	if !(total > 0) || !mathx.Finite(total) {
		return nil, errors.Wrapf(types.ErrInvalidInput, "textsplit: total duration %v", total)
	}
	for _, wt := range timings {
		if wt.Position < 1 || wt.StartMS < 0 || wt.EndMS < wt.StartMS {
			return nil, errors.Wrapf(types.ErrInvalidInput, "textsplit: malformed word timing %+v", wt)
		}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []types.TextChunk{{Text: text, Start: 0, End: total}}, nil
	}

	sorted := make([]types.WordTiming, len(timings))
	copy(sorted, timings)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	per := s.WordsPerLine(len(words))
	var lines []types.TextChunk
	prevStart := 0.0
	for i := 0; i < len(words); i += per {
		j := min(i+per, len(words))
		start := prevStart
		if wt, ok := firstTimingIn(sorted, i+1, j); ok {
			start = math.Max(0, float64(wt.StartMS)/1000-s.cfg.Lead)
		}
		start = math.Min(math.Max(start, prevStart), total)
		lines = append(lines, types.TextChunk{Text: strings.Join(words[i:j], " "), Start: start})
		prevStart = start
	}
	for i := range lines {
		if i+1 < len(lines) {
			lines[i].End = lines[i+1].Start
		} else {
			lines[i].End = total
		}
	}
	return mergeEmptyLines(lines), nil
}

// firstTimingIn returns the first timing whose position is within [lo, hi].
func firstTimingIn(sorted []types.WordTiming, lo, hi int) (types.WordTiming, bool) {
	k := sort.Search(len(sorted), func(i int) bool { return sorted[i].Position >= lo })
	if k < len(sorted) && sorted[k].Position <= hi {
		return sorted[k], true
	}
	return types.WordTiming{}, false
}

func mergeEmptyLines(lines []types.TextChunk) []types.TextChunk {
	var out []types.TextChunk
	pending := ""
	for _, l := range lines {
		if pending != "" {
			l.Text = pending + " " + l.Text
			pending = ""
		}
		if l.End > l.Start {
			out = append(out, l)
			continue
		}
		pending = l.Text
	}
	if pending != "" {
		if len(out) == 0 {
			// Every aligned word starts at or after the end of the audio.
			return []types.TextChunk{{Text: pending, Start: 0, End: lines[len(lines)-1].End}}
		}
		out[len(out)-1].Text += " " + pending
	}
	return out
}
