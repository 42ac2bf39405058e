package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/forPelevin/ayatreel/internal/domain/caption"
	"github.com/forPelevin/ayatreel/internal/domain/overlay"
	"github.com/forPelevin/ayatreel/internal/domain/segments"
	"github.com/forPelevin/ayatreel/internal/domain/subtitles"
	"github.com/forPelevin/ayatreel/internal/mathx"
	"github.com/forPelevin/ayatreel/internal/ports"
	"github.com/forPelevin/ayatreel/internal/types"
)

type Deps struct {
	Media       ports.MediaTool
	Source      ports.AyatSource
	Captioner   ports.Captioner
	Backgrounds ports.BackgroundPicker

	// Aligner and Detector are optional. Without either, the plan falls back
	// to an automatic split.
	Aligner  ports.Aligner
	Detector *segments.Detector

	Scheduler *overlay.Scheduler
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	Index    int
	Ref      types.AyatRef
	Qari     string
	Hashtags string
	// HookChrome renders the caption hook as the chrome element.
	HookChrome bool

	CacheDir string
	OutDir   string
	Logf     func(format string, args ...any)
}

type Result struct {
	Item types.ManifestItem
	Plan types.CompositionPlan
}

// Run produces one video for in.Ref. Alignment, segment detection and AI
// captions degrade to their fallbacks; everything else fails the item.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	logf := in.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	ayat, err := u.d.Source.Ayat(ctx, in.Ref, in.Qari)
	if err != nil {
		return Result{}, err
	}
	logf("ayat %d:%d (%s)", in.Ref.Surah, in.Ref.Ayat, ayat.SurahName)

	id := fmt.Sprintf("%03d-%d-%d-%s", in.Index+1, in.Ref.Surah, in.Ref.Ayat, uuid.NewString()[:8])
	if err := os.MkdirAll(in.CacheDir, 0o755); err != nil {
		return Result{}, errors.WithStack(err)
	}
	audioPath := filepath.Join(in.CacheDir, id+".mp3")
	if err := u.d.Source.DownloadAudio(ctx, ayat.AudioURL, audioPath); err != nil {
		return Result{}, err
	}

	profile, err := u.d.Media.ProbeAudio(ctx, audioPath)
	if err != nil {
		return Result{}, err
	}
	logf("audio duration: %.2fs", profile.DurationSeconds)

	timings := u.wordTimings(ctx, audioPath, ayat.TextArab, id, in.CacheDir, logf)
	var segs []types.AudioSegment
	if len(timings) == 0 {
		segs = u.segments(ctx, audioPath, logf)
	}

	text, err := u.d.Captioner.Caption(ctx, ayat, in.Hashtags)
	if err != nil {
		logf("caption failed, using template: %v", err)
		text = caption.Template(ayat.SurahName, ayat.Ref.Ayat, ayat.TextTranslation, in.Hashtags)
	}
	var chrome string
	if in.HookChrome {
		chrome = caption.Hook(ayat.TextTranslation)
	}

	bg, err := u.d.Backgrounds.Pick()
	if err != nil {
		return Result{}, err
	}

	plan, err := u.d.Scheduler.BuildPlan(overlay.Request{
		AudioDuration:   profile.DurationSeconds,
		TextArab:        ayat.TextArab,
		TextTranslation: ayat.TextTranslation,
		SurahName:       ayat.SurahName,
		Ayat:            ayat.Ref.Ayat,
		WordTimings:     timings,
		Segments:        segs,
		Chrome:          chrome,
		Background:      bg,
		Audio:           audioPath,
	})
	if err != nil {
		return Result{}, err
	}
	logf("plan: strategy=%s elements=%d total=%.2fs", plan.Strategy, len(plan.Elements), plan.TotalDuration)

	ass, err := subtitles.RenderPlanASS(plan)
	if err != nil {
		return Result{}, err
	}

	rel := func(dir, ext string) string { return filepath.ToSlash(filepath.Join(dir, id+ext)) }
	planJSON, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return Result{}, errors.Wrap(err, "marshal plan")
	}
	files := map[string][]byte{
		rel("plans", ".json"):    planJSON,
		rel("subtitles", ".ass"): []byte(ass),
		rel("captions", ".txt"):  []byte(text),
	}
	for name, b := range files {
		if err := writeFile(filepath.Join(in.OutDir, filepath.FromSlash(name)), b); err != nil {
			return Result{}, err
		}
	}

	videoPath := filepath.Join(in.OutDir, "videos", id+".mp4")
	if err := os.MkdirAll(filepath.Dir(videoPath), 0o755); err != nil {
		return Result{}, errors.WithStack(err)
	}
	assPath := filepath.Join(in.OutDir, "subtitles", id+".ass")
	if err := u.d.Media.RenderPlan(ctx, plan, assPath, videoPath); err != nil {
		return Result{}, err
	}
	logf("video written: %s", videoPath)

	return Result{
		Plan: plan,
		Item: types.ManifestItem{
			Index:       in.Index,
			Surah:       ayat.Ref.Surah,
			Ayat:        ayat.Ref.Ayat,
			SurahName:   ayat.SurahName,
			File:        rel("videos", ".mp4"),
			Plan:        rel("plans", ".json"),
			Subtitles:   rel("subtitles", ".ass"),
			Caption:     text,
			DurationSec: mathx.Round3(plan.TotalDuration),
			Strategy:    plan.Strategy,
			Elements:    len(plan.Elements),
		},
	}, nil
}

func (u Usecase) wordTimings(ctx context.Context, audioPath, text, id, cacheDir string, logf func(string, ...any)) []types.WordTiming {
	if u.d.Aligner == nil {
		return nil
	}
	wav := filepath.Join(cacheDir, id+".wav")
	if err := u.d.Media.ExtractAudioMono16k(ctx, audioPath, wav); err != nil {
		logf("alignment skipped: %v", err)
		return nil
	}
	timings, err := u.d.Aligner.Align(ctx, wav, text, cacheDir)
	if err != nil {
		logf("alignment failed, falling back: %v", err)
		return nil
	}
	logf("aligned %d words", len(timings))
	return timings
}

func (u Usecase) segments(ctx context.Context, audioPath string, logf func(string, ...any)) []types.AudioSegment {
	if u.d.Detector == nil {
		return nil
	}
	pcm, err := u.d.Media.DecodePCM(ctx, audioPath, u.d.Detector.Config().SampleRate)
	if err != nil {
		logf("segment detection skipped: %v", err)
		return nil
	}
	segs, err := u.d.Detector.DetectSegments(pcm)
	if err != nil {
		logf("segment detection failed: %v", err)
		return nil
	}
	logf("detected %d segments", len(segs))
	return segs
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, b, 0o644))
}
