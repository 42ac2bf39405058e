package overlay

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/forPelevin/ayatreel/internal/types"
)

// stackOrder is the top-to-bottom order of blocks on the canvas.
var stackOrder = []types.ElementKind{
	types.KindArabicLine,
	types.KindTranslationLine,
	types.KindReference,
	types.KindChrome,
	types.KindWatermark,
}

func kindRank(k types.ElementKind) int {
	for i, o := range stackOrder {
		if o == k {
			return i
		}
	}
	return len(stackOrder)
}

// wrapText breaks text into lines of at most maxChars runes, never splitting
// a word. Words longer than maxChars get a line of their own.
func wrapText(text string, maxChars int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	var cur []string
	curLen := 0
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		if len(cur) > 0 && curLen+1+n > maxChars {
			lines = append(lines, strings.Join(cur, " "))
			cur = cur[:0]
			curLen = 0
		}
		if len(cur) > 0 {
			curLen++
		}
		cur = append(cur, w)
		curLen += n
	}
	return append(lines, strings.Join(cur, " "))
}

type block struct {
	kind     types.ElementKind
	lines    int
	fontSize int
}

func (b block) height(lineHeight float64) float64 {
	return float64(b.lines) * float64(b.fontSize) * lineHeight
}

// layout wraps every element and assigns anchors by stacking blocks from the
// top margin. A block is as tall as its tallest element. When the stack does
// not fit between the margins every font is scaled by the same factor (line
// counts stay as wrapped at the configured size), floored at MinFontSize. If
// the stack still overflows at the floor, cosmetic blocks are dropped from the
// bottom up; content that cannot fit fails with ErrInconsistentPlan.
func (s *Scheduler) layout(elems []types.TimedElement) ([]types.TimedElement, error) {
	var blocks []block
	for _, kind := range stackOrder {
		b := block{kind: kind, fontSize: s.cfg.block(kind).Style.FontSize}
		found := false
		for i := range elems {
			if elems[i].Kind != kind {
				continue
			}
			found = true
			elems[i].Lines = wrapText(elems[i].Text, s.cfg.block(kind).WrapChars)
			b.lines = max(b.lines, len(elems[i].Lines), 1)
		}
		if found {
			blocks = append(blocks, b)
		}
	}

	l := s.cfg.Layout
	for {
		if len(blocks) == 0 {
			return elems, nil
		}
		sized, ok := s.fitBlocks(blocks)
		if ok {
			s.place(elems, sized)
			return elems, nil
		}
		drop := -1
		for i := len(blocks) - 1; i >= 0; i-- {
			if blocks[i].kind.Cosmetic() {
				drop = i
				break
			}
		}
		if drop < 0 {
			return nil, errors.Wrapf(types.ErrInconsistentPlan,
				"overlay: text does not fit %dpx between margins at %dpx", l.Canvas.Height-l.TopMargin-l.BottomMargin, MinFontSize)
		}
		kind := blocks[drop].kind
		blocks = append(blocks[:drop], blocks[drop+1:]...)
		kept := elems[:0]
		for _, e := range elems {
			if e.Kind != kind {
				kept = append(kept, e)
			}
		}
		elems = kept
	}
}

// fitBlocks returns the blocks with font sizes that fit the space between the
// margins, and false when even MinFontSize overflows.
func (s *Scheduler) fitBlocks(blocks []block) ([]block, bool) {
	l := s.cfg.Layout
	available := float64(l.Canvas.Height - l.TopMargin - l.BottomMargin)
	gaps := float64(l.Gap * (len(blocks) - 1))
	out := append([]block(nil), blocks...)

	stackHeight := func() float64 {
		h := gaps
		for _, b := range out {
			h += b.height(l.LineHeight)
		}
		return h
	}
	if stackHeight() <= available {
		return out, true
	}
	shrink := (available - gaps) / (stackHeight() - gaps)
	for i := range out {
		out[i].fontSize = max(MinFontSize, int(math.Floor(float64(out[i].fontSize)*shrink)))
	}
	return out, stackHeight() <= available
}

func (s *Scheduler) place(elems []types.TimedElement, blocks []block) {
	l := s.cfg.Layout
	y := float64(l.TopMargin)
	for _, b := range blocks {
		anchor := types.Anchor{X: l.Canvas.Width / 2, Y: int(math.Round(y))}
		for i := range elems {
			if elems[i].Kind != b.kind {
				continue
			}
			elems[i].Anchor = anchor
			elems[i].Style = s.cfg.block(b.kind).Style
			elems[i].Style.FontSize = b.fontSize
		}
		y += b.height(l.LineHeight) + float64(l.Gap)
	}
}
