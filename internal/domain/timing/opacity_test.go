package timing

import (
	"math"
	"testing"
)

func TestOpacity_Bounded(t *testing.T) {
	for start := 0.0; start <= 4; start += 1.3 {
		for length := 0.1; length <= 6; length += 0.7 {
			end := start + length
			for fi := 0.3; fi <= 1.0; fi += 0.35 {
				for fo := 0.3; fo <= 1.0; fo += 0.35 {
					for tt := start - 2; tt <= end+2; tt += 0.01 {
						o := Opacity(tt, start, end, fi, fo)
						if o < 0 || o > 1 || math.IsNaN(o) {
							t.Fatalf("opacity(%v, %v, %v, %v, %v) = %v", tt, start, end, fi, fo, o)
						}
					}
				}
			}
		}
	}
}

func TestOpacity_Edges(t *testing.T) {
	start, end, fi, fo := 2.0, 8.0, 0.5, 1.0
	for _, tt := range []float64{-10, 1.99, 8.01, 100, math.Inf(1), math.Inf(-1), math.NaN()} {
		if o := Opacity(tt, start, end, fi, fo); o != 0 {
			t.Fatalf("expected 0 at t=%v, got %v", tt, o)
		}
	}
	if o := Opacity((start+end)/2, start, end, fi, fo); o != 1 {
		t.Fatalf("expected 1 at midpoint, got %v", o)
	}
	if o := Opacity(2.25, start, end, fi, fo); math.Abs(o-0.5) > 1e-9 {
		t.Fatalf("expected half-way fade in, got %v", o)
	}
	if o := Opacity(7.5, start, end, fi, fo); math.Abs(o-0.5) > 1e-9 {
		t.Fatalf("expected half-way fade out, got %v", o)
	}
	if o := Opacity(start, start, end, fi, fo); o != 0 {
		t.Fatalf("expected 0 at start, got %v", o)
	}
}

func TestOpacity_ZeroFades(t *testing.T) {
	if o := Opacity(1, 1, 2, 0, 0); o != 1 {
		t.Fatalf("expected hard cut-in, got %v", o)
	}
	if o := Opacity(2, 1, 2, 0, 0); o != 1 {
		t.Fatalf("expected visible at end without fade out, got %v", o)
	}
}
