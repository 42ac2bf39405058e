package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/forPelevin/ayatreel/internal/types"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default tuning invalid: %v", err)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	got, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if got.Overlay.MinTotalDuration != 10 || got.Timing.MaxFade != 1.0 {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestLoad_PartialOverride(t *testing.T) {
	p := writeFile(t, `
timing:
  translation_start_ratio: 0.6
overlay:
  min_total_duration: 12
  watermark_text: "@ayatreel"
  arabic:
    style:
      font_size: 72
qari: husary
hook_chrome: false
`)
	got, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if got.Timing.TranslationStartRatio != 0.6 || got.Timing.MinFade != 0.3 {
		t.Fatalf("timing override wrong: %+v", got.Timing)
	}
	if got.Overlay.MinTotalDuration != 12 || got.Overlay.WatermarkText != "@ayatreel" {
		t.Fatalf("overlay override wrong: %+v", got.Overlay)
	}
	if got.Overlay.Arabic.Style.FontSize != 72 || got.Overlay.Arabic.Style.Color != "#FFFFFF" || got.Overlay.Arabic.WrapChars != 30 {
		t.Fatalf("nested override should keep sibling defaults: %+v", got.Overlay.Arabic)
	}
	if got.Qari != "husary" || got.HookChrome {
		t.Fatalf("top-level overrides wrong: %+v", got)
	}
	if got.Segments.TopDB != 30 {
		t.Fatalf("untouched section should keep defaults: %+v", got.Segments)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "timing:\n  fade_speed: 2\n"},
		{"bad fade bounds", "timing:\n  min_fade: 2\n  max_fade: 1\n"},
		{"bad gap", "overlay:\n  layout:\n    gap: 5\n"},
		{"unknown qari", "qari: nobody\n"},
		{"malformed", "timing: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.body)); !errors.Is(err, types.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	b, err := Default().Marshal()
	if err != nil {
		t.Fatal(err)
	}
	var got Tuning
	if err := Decode(b, &got); err != nil {
		t.Fatalf("decode marshalled defaults: %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("marshalled defaults invalid: %v", err)
	}
}
