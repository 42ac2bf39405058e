package quran

import (
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	"github.com/forPelevin/ayatreel/internal/types"
)

// ayatPerSurah[i] is the number of ayat in surah i+1.
var ayatPerSurah = [114]int{
	7, 286, 200, 176, 120, 165, 206, 75, 129, 109,
	123, 111, 43, 52, 99, 128, 111, 110, 98, 135,
	112, 78, 118, 64, 77, 227, 93, 88, 69, 60,
	34, 30, 73, 54, 45, 83, 182, 88, 75, 85,
	54, 53, 89, 59, 37, 35, 38, 29, 18, 45,
	60, 49, 62, 55, 78, 96, 29, 22, 24, 13,
	14, 11, 11, 18, 12, 12, 30, 52, 52, 44,
	28, 28, 20, 56, 40, 31, 50, 40, 46, 42,
	29, 19, 36, 25, 22, 17, 19, 26, 30, 20,
	15, 21, 11, 8, 8, 19, 5, 8, 8, 11,
	11, 8, 3, 9, 5, 4, 7, 3, 6, 3,
	5, 4, 5, 6,
}

const SurahCount = len(ayatPerSurah)

// TotalAyat is the number of ayat in the whole Quran.
const TotalAyat = 6236

// AyatCount returns the ayat count of a surah, or 0 if it does not exist.
func AyatCount(surah int) int {
	if surah < 1 || surah > SurahCount {
		return 0
	}
	return ayatPerSurah[surah-1]
}

func IsValid(ref types.AyatRef) bool {
	return ref.Ayat >= 1 && ref.Ayat <= AyatCount(ref.Surah)
}

// Next returns the reference after ref in mushaf order; false after the
// last ayat of An-Nas.
func Next(ref types.AyatRef) (types.AyatRef, bool) {
	if !IsValid(ref) {
		return types.AyatRef{}, false
	}
	if ref.Ayat < AyatCount(ref.Surah) {
		return types.AyatRef{Surah: ref.Surah, Ayat: ref.Ayat + 1}, true
	}
	if ref.Surah < SurahCount {
		return types.AyatRef{Surah: ref.Surah + 1, Ayat: 1}, true
	}
	return types.AyatRef{}, false
}

// RandomReference picks a reference not present in used, walking the global
// ayat index from a random offset.
func RandomReference(rng *rand.Rand, used map[types.AyatRef]bool) (types.AyatRef, error) {
	start := rng.Intn(TotalAyat)
	for i := 0; i < TotalAyat; i++ {
		ref := refAt((start + i) % TotalAyat)
		if !used[ref] {
			return ref, nil
		}
	}
	return types.AyatRef{}, errors.Wrap(types.ErrNotFound, "quran: all ayat have been used")
}

// cumulative[i] is the number of ayat before surah i+1.
var cumulative = func() [SurahCount + 1]int {
	var c [SurahCount + 1]int
	for i, n := range ayatPerSurah {
		c[i+1] = c[i] + n
	}
	return c
}()

// refAt maps a 0-based global index to its reference.
func refAt(idx int) types.AyatRef {
	s := sort.Search(SurahCount, func(i int) bool { return cumulative[i+1] > idx })
	return types.AyatRef{Surah: s + 1, Ayat: idx - cumulative[s] + 1}
}

// Qari maps short reciter names to alquran.cloud edition codes.
var Qari = map[string]string{
	"alafasy":    "ar.alafasy",
	"abdulbasit": "ar.abdulbasit",
	"sudais":     "ar.abdurrahmaansudais",
	"husary":     "ar.husary",
	"minshawi":   "ar.minshawi",
}

const DefaultQari = "alafasy"

// QariEdition returns the edition code for a reciter name, falling back to
// the default reciter for unknown names.
func QariEdition(name string) string {
	if code, ok := Qari[name]; ok {
		return code
	}
	return Qari[DefaultQari]
}

// QariNames returns the known reciter names in stable order.
func QariNames() []string {
	out := make([]string, 0, len(Qari))
	for k := range Qari {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
