package caption

import (
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"
)

const DefaultHashtags = "#quran #murotal #islamic #muslim #ayatquran #dakwah #islam #fyp"

// Template renders the plain caption used when no AI captioner is
// configured or it fails.
func Template(surahName string, ayat int, translation, hashtags string) string {
	if strings.TrimSpace(hashtags) == "" {
		hashtags = DefaultHashtags
	}
	var b strings.Builder
	b.WriteString(strings.TrimSpace(surahName))
	b.WriteString(" - Ayat ")
	b.WriteString(strconv.Itoa(ayat))
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(translation))
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(hashtags))
	return b.String()
}

type Theme string

const (
	ThemeWarning  Theme = "warning"
	ThemePromise  Theme = "promise"
	ThemeGuidance Theme = "guidance"
	ThemeReminder Theme = "reminder"
	ThemeMercy    Theme = "mercy"
	ThemeCreation Theme = "creation"
	ThemeGeneral  Theme = "general"
)

// themeOrder breaks score ties.
var themeOrder = []Theme{ThemeWarning, ThemePromise, ThemeGuidance, ThemeReminder, ThemeMercy, ThemeCreation}

// Keywords match as substrings of the lowercased Indonesian translation so
// affixed forms ("dosa-dosa", "ciptakan") still count.
var themeKeywords = map[Theme]*regexp.Regexp{
	ThemeWarning:  regexp.MustCompile(`azab|neraka|siksa|celaka|binasa|hukuman|murka|zalim|kafir|dosa`),
	ThemePromise:  regexp.MustCompile(`surga|pahala|balasan|nikmat|kebahagiaan|beruntung|menang|selamat`),
	ThemeGuidance: regexp.MustCompile(`petunjuk|jalan|benar|lurus|perintah|larangan|hukum|syariat`),
	ThemeReminder: regexp.MustCompile(`ingat|lupa|lalai|akhirat|mati|kiamat|hisab`),
	ThemeMercy:    regexp.MustCompile(`ampun|rahmat|kasih|sayang|taubat|maaf|pengampun`),
	ThemeCreation: regexp.MustCompile(`langit|bumi|ciptakan|mencipta|tanda|alam|matahari|bulan|bintang`),
}

// DetectTheme scores each theme by the number of distinct keywords present.
func DetectTheme(translation string) Theme {
	lower := strings.ToLower(translation)
	best, bestScore := ThemeGeneral, 0
	for _, th := range themeOrder {
		seen := map[string]bool{}
		for _, m := range themeKeywords[th].FindAllString(lower, -1) {
			seen[m] = true
		}
		if len(seen) > bestScore {
			best, bestScore = th, len(seen)
		}
	}
	return best
}

var themeHooks = map[Theme][]string{
	ThemeWarning:  {"Peringatan keras dari Allah...", "Jangan abaikan ayat ini!", "Allah memperingatkan kita...", "Hati-hati dengan ini..."},
	ThemePromise:  {"Janji Allah untuk orang beriman...", "Kabar gembira untukmu!", "Allah menjanjikan ini...", "Hadiah dari Allah..."},
	ThemeGuidance: {"Petunjuk hidup dari Allah...", "Jalan yang benar adalah...", "Allah mengajarkan kita...", "Kunci kebahagiaan..."},
	ThemeReminder: {"Sudahkah kamu ingat ini?", "Renungkan ayat ini...", "Pengingat penting!", "Jangan lupa hal ini..."},
	ThemeMercy:    {"Kasih sayang Allah...", "Allah Maha Pengampun...", "Rahmat Allah sangat luas...", "Jangan putus asa!"},
	ThemeCreation: {"Keajaiban ciptaan Allah...", "Tanda-tanda kebesaran-Nya...", "Pernahkah kamu pikirkan ini?", "Bukti kekuasaan Allah..."},
	ThemeGeneral:  {"Dengarkan ayat ini...", "Al-Quran berkata...", "Ayat yang indah...", "Mutiara Al-Quran...", "Simak baik-baik..."},
}

// Content-specific hooks win over theme hooks; first match wins.
var customHooks = []struct {
	re   *regexp.Regexp
	hook string
}{
	{regexp.MustCompile(`orang-orang yang beriman`), "Apakah kamu termasuk?"},
	{regexp.MustCompile(`bertakwa`), "Ciri orang bertakwa..."},
	{regexp.MustCompile(`sabar`), "Kunci kesabaran..."},
	{regexp.MustCompile(`syukur`), "Nikmat yang sering dilupakan..."},
	{regexp.MustCompile(`\bdoa\b|berdoa`), "Doa yang dikabulkan..."},
	{regexp.MustCompile(`rezeki`), "Rahasia rezeki..."},
	{regexp.MustCompile(`\bibu\b|orang tua`), "Tentang orang tua..."},
	{regexp.MustCompile(`\bmati\b|kematian`), "Kematian pasti datang..."},
}

// Hook returns an attention line for the video. The choice among theme
// hooks is a hash of the translation, so the same ayat always gets the same
// hook.
func Hook(translation string) string {
	lower := strings.ToLower(translation)
	for _, c := range customHooks {
		if c.re.MatchString(lower) {
			return c.hook
		}
	}
	hooks := themeHooks[DetectTheme(translation)]
	h := fnv.New32a()
	_, _ = h.Write([]byte(translation))
	return hooks[int(h.Sum32()%uint32(len(hooks)))]
}
