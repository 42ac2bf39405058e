package mathx

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		x, lo, hi, want float64
	}{
		{0.1, 0.3, 1.0, 0.3},
		{0.5, 0.3, 1.0, 0.5},
		{7, 0.3, 1.0, 1.0},
		{-3, 0, 0.5, 0},
	}
	for _, tt := range tests {
		if got := Clamp(tt.x, tt.lo, tt.hi); got != tt.want {
			t.Fatalf("Clamp(%v, %v, %v) = %v, want %v", tt.x, tt.lo, tt.hi, got, tt.want)
		}
	}
	if got := Clamp(12, 1, 8); got != 8 {
		t.Fatalf("int clamp: got %d", got)
	}
}

func TestFinite(t *testing.T) {
	if Finite(math.NaN()) || Finite(math.Inf(1)) || Finite(math.Inf(-1)) {
		t.Fatalf("expected non-finite values to be rejected")
	}
	if !Finite(0) || !Finite(-2.5) {
		t.Fatalf("expected finite values to be accepted")
	}
}

func TestRound3(t *testing.T) {
	if got := Round3(1.23456); got != 1.235 {
		t.Fatalf("Round3 = %v", got)
	}
}
