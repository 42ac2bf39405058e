package whispercpp

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/forPelevin/ayatreel/internal/types"
)

type Adapter struct {
	bin      string
	model    string
	language string
}

func New(binPath, modelPath string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath, language: "ar"}
}

// output mirrors the subset of whisper.cpp -oj output we read.
type output struct {
	Transcription []struct {
		Offsets struct {
			From int `json:"from"`
			To   int `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// Align transcribes wavPath one word per entry and pairs recognized words,
// in order, with the words of text. Recognized words beyond the verse
// length are dropped.
func (a *Adapter) Align(ctx context.Context, wavPath, text, cacheDir string) ([]types.WordTiming, error) {
	if a.bin == "" || a.model == "" {
		return nil, errors.New("whisper.cpp: binary and model paths are required")
	}
	outPrefix := filepath.Join(cacheDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-l", a.language,
		"-ml", "1",
		"-sow",
		"-oj",
		"-of", outPrefix,
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return nil, errors.Wrapf(err, "whisper.cpp failed\n%s", string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return parseTimings(jb, len(strings.Fields(text)))
}

func parseTimings(jb []byte, maxWords int) ([]types.WordTiming, error) {
	var out output
	if err := json.Unmarshal(jb, &out); err != nil {
		return nil, errors.Wrap(err, "parse whisper.cpp json")
	}
	var timings []types.WordTiming
	for _, tr := range out.Transcription {
		if len(timings) >= maxWords {
			break
		}
		if !hasLetter(tr.Text) {
			continue
		}
		from, to := tr.Offsets.From, tr.Offsets.To
		if from < 0 {
			from = 0
		}
		if to < from {
			to = from
		}
		timings = append(timings, types.WordTiming{Position: len(timings) + 1, StartMS: from, EndMS: to})
	}
	return timings, nil
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
