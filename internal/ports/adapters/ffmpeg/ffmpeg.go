package ffmpeg

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/forPelevin/ayatreel/internal/mathx"
	"github.com/forPelevin/ayatreel/internal/types"
)

const (
	defaultProbeTimeout = 30 * time.Second
	renderFPS           = 30
)

type Adapter struct {
	ffmpeg string
}

func New(ffmpegPath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Adapter{ffmpeg: ffmpegPath}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (a *Adapter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	if err := requireFile(path); err != nil {
		return 0, err
	}
	timeout, err := probeTimeout(ctx)
	if err != nil {
		return 0, err
	}
	out, err := ffmpeggo.ProbeWithTimeout(path, timeout, ffmpeggo.KwArgs{})
	if err != nil {
		return 0, errors.Wrapf(err, "ffprobe %s", path)
	}
	return parseProbeDuration(out)
}

// probeTimeout bounds ffprobe by the context deadline, or defaultProbeTimeout
// without one.
func probeTimeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.WithStack(err)
	}
	dl, ok := ctx.Deadline()
	if !ok {
		return defaultProbeTimeout, nil
	}
	left := time.Until(dl)
	if left <= 0 {
		return 0, errors.WithStack(context.DeadlineExceeded)
	}
	return left, nil
}

// ProbeAudio returns the profile of a recitation track. Tracks without a
// positive duration are rejected.
func (a *Adapter) ProbeAudio(ctx context.Context, path string) (types.AudioProfile, error) {
	sec, err := a.ProbeDuration(ctx, path)
	if err != nil {
		return types.AudioProfile{}, err
	}
	if !(sec > 0) || !mathx.Finite(sec) {
		return types.AudioProfile{}, errors.Wrapf(types.ErrInvalidInput, "audio %s has duration %v", path, sec)
	}
	return types.AudioProfile{DurationSeconds: sec}, nil
}

func parseProbeDuration(out string) (float64, error) {
	var p probeOutput
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		return 0, errors.Wrap(err, "parse ffprobe output")
	}
	s := strings.TrimSpace(p.Format.Duration)
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse duration %q", s)
	}
	return sec, nil
}

func (a *Adapter) DecodePCM(ctx context.Context, path string, sampleRate int) (types.PCM, error) {
	if err := requireFile(path); err != nil {
		return types.PCM{}, err
	}
	if sampleRate <= 0 {
		return types.PCM{}, errors.Wrapf(types.ErrInvalidInput, "sample rate %d", sampleRate)
	}
	args := decodeArgs(path, sampleRate)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return types.PCM{}, errors.Wrapf(err, "ffmpeg decode pcm\n%s", stderr.String())
	}
	return types.PCM{Samples: float32le(stdout.Bytes()), SampleRate: sampleRate}, nil
}

func decodeArgs(path string, sampleRate int) []string {
	return ffmpeggo.Input(path).
		Output("pipe:", ffmpeggo.KwArgs{
			"f":        "f32le",
			"ac":       1,
			"ar":       sampleRate,
			"loglevel": "error",
		}).
		GetArgs()
}

func float32le(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, in, outWav string) error {
	if err := requireFile(in); err != nil {
		return err
	}
	args := ffmpeggo.Input(in).
		Output(outWav, ffmpeggo.KwArgs{"ac": 1, "ar": 16000, "f": "wav"}).
		OverWriteOutput().
		GetArgs()
	b, err := exec.CommandContext(ctx, a.ffmpeg, args...).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "ffmpeg extract audio\n%s", string(b))
	}
	return nil
}

func (a *Adapter) RenderPlan(ctx context.Context, plan types.CompositionPlan, assPath, outPath string) error {
	for _, p := range []string{plan.Background, plan.Audio, assPath} {
		if err := requireFile(p); err != nil {
			return err
		}
	}
	args := renderArgs(plan, assPath, outPath)
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "ffmpeg render\n%s", string(b))
	}
	return nil
}

// renderArgs scales and crops the looped background to the canvas, burns the
// overlay script and pads the recitation with silence up to the plan length.
func renderArgs(plan types.CompositionPlan, assPath, outPath string) []string {
	w, h := plan.Canvas.Width, plan.Canvas.Height
	video := ffmpeggo.Input(plan.Background, ffmpeggo.KwArgs{"stream_loop": -1}).Video().
		Filter("scale", ffmpeggo.Args{strconv.Itoa(w), strconv.Itoa(h)}, ffmpeggo.KwArgs{"force_original_aspect_ratio": "increase"}).
		Filter("crop", ffmpeggo.Args{strconv.Itoa(w), strconv.Itoa(h)}).
		Filter("setsar", ffmpeggo.Args{"1"}).
		Filter("subtitles", ffmpeggo.Args{assPath})
	audio := ffmpeggo.Input(plan.Audio).Audio().
		Filter("apad", ffmpeggo.Args{})

	return ffmpeggo.Output([]*ffmpeggo.Stream{video, audio}, outPath, ffmpeggo.KwArgs{
		"t":        strconv.FormatFloat(plan.TotalDuration, 'f', 3, 64),
		"r":        renderFPS,
		"c:v":      "libx264",
		"preset":   "veryfast",
		"crf":      20,
		"pix_fmt":  "yuv420p",
		"c:a":      "aac",
		"b:a":      "192k",
		"movflags": "+faststart",
	}).
		OverWriteOutput().
		GetArgs()
}

func requireFile(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(types.ErrNotFound, "media %s", path)
		}
		return errors.WithStack(err)
	}
	if st.IsDir() {
		return errors.Wrapf(types.ErrNotFound, "media %s is a directory", path)
	}
	return nil
}
