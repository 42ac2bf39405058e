package subtitles

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/ayatreel/internal/types"
)

func samplePlan() types.CompositionPlan {
	return types.CompositionPlan{
		Canvas:        types.Canvas{Width: 1080, Height: 1920},
		TotalDuration: 10,
		Elements: []types.TimedElement{
			{
				Kind:   types.KindArabicLine,
				Text:   "بسم الله الرحمن الرحيم",
				Lines:  []string{"بسم الله", "الرحمن الرحيم"},
				Anchor: types.Anchor{X: 540, Y: 320},
				Start:  0, End: 10, FadeIn: 1, FadeOut: 1,
				Style: types.Style{FontSize: 60, Color: "#FFFFFF", Arabic: true, Font: "Amiri", StrokeColor: "#000000", StrokeWidth: 2},
			},
			{
				Kind:   types.KindReference,
				Text:   "QS. {Al-Fatihah}: 1",
				Anchor: types.Anchor{X: 540, Y: 600},
				Start:  0, End: 10, FadeIn: 0.5, FadeOut: 0.5,
				Style: types.Style{FontSize: 32, Color: "#FFD54F"},
			},
		},
	}
}

func TestRenderPlanASS_Dialogues(t *testing.T) {
	ass, err := RenderPlanASS(samplePlan())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ass, "PlayResX: 1080") || !strings.Contains(ass, "PlayResY: 1920") {
		t.Fatalf("expected canvas resolution in header, got:\n%s", ass)
	}
	want := `Dialogue: 1,0:00:00.00,0:00:10.00,Arabic,,0,0,0,,{\an8\pos(540,320)\fad(1000,1000)\fs60}بسم الله\Nالرحمن الرحيم`
	if !strings.Contains(ass, want) {
		t.Fatalf("missing arabic dialogue, got:\n%s", ass)
	}
	if !strings.Contains(ass, `\fad(500,500)\fs32}QS. (Al-Fatihah): 1`) {
		t.Fatalf("reference should be sanitized and faded, got:\n%s", ass)
	}
	if !strings.Contains(ass, "Style: Reference, Arial, 32, &H004FD5FF") {
		t.Fatalf("reference style should carry converted colour, got:\n%s", ass)
	}
}

func TestRenderPlanASS_Rejects(t *testing.T) {
	p := samplePlan()
	p.Canvas = types.Canvas{}
	if _, err := RenderPlanASS(p); !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	p = samplePlan()
	p.Elements[0].End = 0
	if _, err := RenderPlanASS(p); !errors.Is(err, types.ErrInconsistentPlan) {
		t.Fatalf("expected ErrInconsistentPlan, got %v", err)
	}
}

func TestAssColour(t *testing.T) {
	tests := []struct{ in, want string }{
		{"#FFFFFF", "&H00FFFFFF"},
		{"#112233", "&H00332211"},
		{"#ffd54f", "&H004FD5FF"},
		{"white", "&H00FFFFFF"},
		{"#12345G", "&H00FFFFFF"},
	}
	for _, tt := range tests {
		if got := assColour(tt.in, "&H00FFFFFF"); got != tt.want {
			t.Fatalf("assColour(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAssTime_Format(t *testing.T) {
	got := assTime(61*time.Second + 234*time.Millisecond)
	if got != "0:01:01.23" {
		t.Fatalf("unexpected assTime: %s", got)
	}
}
