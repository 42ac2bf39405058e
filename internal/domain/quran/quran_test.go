package quran

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/forPelevin/ayatreel/internal/types"
)

func TestTotals(t *testing.T) {
	sum := 0
	for s := 1; s <= SurahCount; s++ {
		sum += AyatCount(s)
	}
	if sum != TotalAyat {
		t.Fatalf("expected %d ayat, got %d", TotalAyat, sum)
	}
	if SurahCount != 114 {
		t.Fatalf("expected 114 surah, got %d", SurahCount)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		ref  types.AyatRef
		want bool
	}{
		{types.AyatRef{Surah: 1, Ayat: 1}, true},
		{types.AyatRef{Surah: 1, Ayat: 7}, true},
		{types.AyatRef{Surah: 1, Ayat: 8}, false},
		{types.AyatRef{Surah: 2, Ayat: 286}, true},
		{types.AyatRef{Surah: 114, Ayat: 6}, true},
		{types.AyatRef{Surah: 115, Ayat: 1}, false},
		{types.AyatRef{Surah: 0, Ayat: 1}, false},
		{types.AyatRef{Surah: 3, Ayat: 0}, false},
	}
	for _, tt := range tests {
		if got := IsValid(tt.ref); got != tt.want {
			t.Fatalf("IsValid(%+v) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}

func TestRefAt_CoversEveryAyat(t *testing.T) {
	seen := make(map[types.AyatRef]bool, TotalAyat)
	for i := 0; i < TotalAyat; i++ {
		ref := refAt(i)
		if !IsValid(ref) {
			t.Fatalf("index %d maps to invalid %+v", i, ref)
		}
		seen[ref] = true
	}
	if len(seen) != TotalAyat {
		t.Fatalf("expected %d distinct refs, got %d", TotalAyat, len(seen))
	}
	if refAt(0) != (types.AyatRef{Surah: 1, Ayat: 1}) || refAt(7) != (types.AyatRef{Surah: 2, Ayat: 1}) {
		t.Fatalf("unexpected boundary mapping: %+v %+v", refAt(0), refAt(7))
	}
}

func TestRandomReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	used := map[types.AyatRef]bool{}
	for i := 0; i < 50; i++ {
		ref, err := RandomReference(rng, used)
		if err != nil {
			t.Fatalf("pick %d: %v", i, err)
		}
		if used[ref] {
			t.Fatalf("picked a used reference %+v", ref)
		}
		used[ref] = true
	}
}

func TestRandomReference_Exhausted(t *testing.T) {
	used := make(map[types.AyatRef]bool, TotalAyat)
	for i := 0; i < TotalAyat; i++ {
		used[refAt(i)] = true
	}
	_, err := RandomReference(rand.New(rand.NewSource(1)), used)
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQariEdition(t *testing.T) {
	if got := QariEdition("sudais"); got != "ar.abdurrahmaansudais" {
		t.Fatalf("unexpected edition %q", got)
	}
	if got := QariEdition("unknown"); got != "ar.alafasy" {
		t.Fatalf("unknown reciter should fall back, got %q", got)
	}
	if names := QariNames(); len(names) != 5 || names[0] != "abdulbasit" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		in   types.AyatRef
		want types.AyatRef
		ok   bool
	}{
		{types.AyatRef{Surah: 1, Ayat: 1}, types.AyatRef{Surah: 1, Ayat: 2}, true},
		{types.AyatRef{Surah: 1, Ayat: 7}, types.AyatRef{Surah: 2, Ayat: 1}, true},
		{types.AyatRef{Surah: 114, Ayat: 6}, types.AyatRef{}, false},
		{types.AyatRef{Surah: 1, Ayat: 8}, types.AyatRef{}, false},
	}
	for _, tt := range tests {
		got, ok := Next(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("Next(%+v) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
