package energy

import (
	"math"
	"testing"
)

const sr = 16000

// tone returns seconds of a 440 Hz sine at amplitude amp.
func tone(seconds, amp float64) []float32 {
	n := int(seconds * sr)
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*440*float64(i)/sr))
	}
	return out
}

func concat(parts ...[]float32) []float32 {
	var out []float32
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestNonSilent_TwoBursts(t *testing.T) {
	samples := concat(tone(0.5, 0), tone(1, 0.8), tone(1, 0), tone(1.5, 0.5), tone(0.5, 0))
	got := New().NonSilent(samples, 30)
	if len(got) != 2 {
		t.Fatalf("expected 2 ranges, got %v", got)
	}
	// Frame centring blurs each edge by at most one frame.
	const slack = DefaultFrameLength
	wants := [][2]int{{8000, 24000}, {40000, 64000}}
	for i, w := range wants {
		if abs(got[i][0]-w[0]) > slack || abs(got[i][1]-w[1]) > slack {
			t.Fatalf("range %d: got %v want about %v", i, got[i], w)
		}
	}
	if got[0][1] >= got[1][0] {
		t.Fatalf("ranges must not overlap: %v", got)
	}
}

func TestNonSilent_LoudToEdges(t *testing.T) {
	samples := tone(1, 0.5)
	got := New().NonSilent(samples, 30)
	if len(got) != 1 || got[0][0] != 0 || got[0][1] != len(samples) {
		t.Fatalf("expected a single full range, got %v", got)
	}
}

func TestNonSilent_QuietBelowThreshold(t *testing.T) {
	// -40 dB relative level drops out at top_db 30 but stays at 60.
	samples := concat(tone(1, 1), tone(1, 0.01))
	if got := New().NonSilent(samples, 30); len(got) != 1 || got[0][1] > 16000+DefaultFrameLength {
		t.Fatalf("quiet tail should be silent at 30 dB, got %v", got)
	}
	if got := New().NonSilent(samples, 60); len(got) != 1 || got[0][1] != len(samples) {
		t.Fatalf("quiet tail should be kept at 60 dB, got %v", got)
	}
}

func TestNonSilent_Empty(t *testing.T) {
	if got := New().NonSilent(nil, 30); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
