package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/forPelevin/ayatreel/internal/backgrounds"
	"github.com/forPelevin/ayatreel/internal/batch"
	"github.com/forPelevin/ayatreel/internal/config"
	"github.com/forPelevin/ayatreel/internal/domain/overlay"
	"github.com/forPelevin/ayatreel/internal/domain/quran"
	"github.com/forPelevin/ayatreel/internal/domain/segments"
	"github.com/forPelevin/ayatreel/internal/domain/textsplit"
	"github.com/forPelevin/ayatreel/internal/domain/timing"
	"github.com/forPelevin/ayatreel/internal/ports"
	"github.com/forPelevin/ayatreel/internal/ports/adapters/alquran"
	"github.com/forPelevin/ayatreel/internal/ports/adapters/energy"
	"github.com/forPelevin/ayatreel/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/ayatreel/internal/ports/adapters/openrouter"
	"github.com/forPelevin/ayatreel/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/ayatreel/internal/types"
	"github.com/forPelevin/ayatreel/internal/usecase"
)

type Config struct {
	OutDir string
	Count  int
	// Ref, when set, starts the batch at this ayat and continues in mushaf
	// order. Otherwise references are random and unique within the run.
	Ref            *types.AyatRef
	Seed           int64
	BackgroundsDir string
	Tuning         config.Tuning

	Logger *zap.Logger
	// Job lets the caller cancel the batch between items.
	Job *batch.Job

	// CacheDir is the base directory for downloaded audio and alignment
	// artifacts. If empty, defaults to ".cache".
	CacheDir string

	FFmpegPath string

	// Alignment is skipped when WhisperModel is empty.
	WhisperBin   string
	WhisperModel string

	OpenRouterAPIKey       string
	OpenRouterModel        string
	OpenRouterBaseURL      string
	OpenRouterAllowedHosts []string

	QuranBaseURL      string
	QuranAllowedHosts []string
}

func (c Config) Validate() error {
	if c.Count <= 0 {
		return errors.New("count must be > 0")
	}
	if c.Ref != nil && !quran.IsValid(*c.Ref) {
		return fmt.Errorf("surah %d has no ayat %d", c.Ref.Surah, c.Ref.Ayat)
	}
	if c.BackgroundsDir == "" {
		return errors.New("backgrounds dir is required")
	}
	if _, err := os.Stat(c.BackgroundsDir); err != nil {
		return fmt.Errorf("stat backgrounds: %w", err)
	}
	if c.WhisperModel != "" && c.WhisperBin == "" {
		return errors.New("whisper binary is required when a model is set")
	}
	if err := c.Tuning.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	if err := alquran.Endpoint.Validate(c.QuranBaseURL, c.QuranAllowedHosts); err != nil {
		return err
	}
	return openrouter.Endpoint.Validate(c.OpenRouterBaseURL, c.OpenRouterAllowedHosts)
}

// NewScheduler builds the overlay scheduler for a tuning.
func NewScheduler(t config.Tuning) *overlay.Scheduler {
	return overlay.NewScheduler(t.Overlay, timing.New(t.Timing), textsplit.New(t.TextSplit))
}

func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logf := logger.Sugar().Infof

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	lib, err := backgrounds.Open(cfg.BackgroundsDir, rng.Int63())
	if err != nil {
		return err
	}
	if lib.Len() == 0 {
		return fmt.Errorf("no background videos in %s", cfg.BackgroundsDir)
	}
	logf("backgrounds: %d videos", lib.Len())

	refs, err := references(cfg.Ref, cfg.Count, rng)
	if err != nil {
		return err
	}

	// adapters
	media := ffmpeg.New(cfg.FFmpegPath)
	deps := usecase.Deps{
		Media:       media,
		Source:      alquran.New(cfg.QuranBaseURL),
		Captioner:   openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL),
		Backgrounds: lib,
		Scheduler:   NewScheduler(cfg.Tuning),
	}
	if cfg.WhisperModel != "" {
		deps.Aligner = whispercpp.New(cfg.WhisperBin, cfg.WhisperModel)
	}
	if cfg.Tuning.DetectSegments {
		deps.Detector = segments.NewDetector(cfg.Tuning.Segments, energy.New())
	}
	uc := usecase.New(deps)

	job := cfg.Job
	if job == nil {
		job = batch.NewJob()
	}

	baseCache := cfg.CacheDir
	if baseCache == "" {
		baseCache = ".cache"
	}
	cacheDir := filepath.Join(baseCache, "runs", job.ID)
	logf("preparing workspace")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}
	logf("cache: %s", cacheDir)

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, runLabel(cfg.Ref), time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return err
	}
	logf("output run dir: %s", runOutDir)

	items := make([]types.ManifestItem, len(refs))
	rep := batch.Runner{Logger: logger}.Run(ctx, job, len(refs), func(ctx context.Context, i int) error {
		ref := refs[i]
		res, err := uc.Run(ctx, usecase.Input{
			Index:      i,
			Ref:        ref,
			Qari:       cfg.Tuning.Qari,
			Hashtags:   cfg.Tuning.Hashtags,
			HookChrome: cfg.Tuning.HookChrome,
			CacheDir:   cacheDir,
			OutDir:     runOutDir,
			Logf:       logger.Sugar().With("item", i).Infof,
		})
		if err != nil {
			items[i] = types.ManifestItem{Index: i, Surah: ref.Surah, Ayat: ref.Ayat, Error: err.Error()}
			return err
		}
		items[i] = res.Item
		return nil
	})

	m := types.Manifest{JobID: job.ID}
	for _, r := range rep.Items {
		m.Items = append(m.Items, items[r.Index])
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(runOutDir, "manifest.json")
	if err := os.WriteFile(manifestPath, b, 0o644); err != nil {
		return err
	}
	logger.Info("manifest written",
		zap.String("path", manifestPath),
		zap.Int("succeeded", rep.Succeeded),
		zap.Int("failed", rep.Failed),
		zap.Bool("cancelled", rep.Cancelled),
	)

	if rep.Cancelled {
		return context.Canceled
	}
	if rep.Succeeded == 0 {
		return fmt.Errorf("all %d items failed", rep.Failed)
	}
	return nil
}

// references returns n ayat to render: sequential from start when given,
// otherwise random without repeats.
func references(start *types.AyatRef, n int, rng *rand.Rand) ([]types.AyatRef, error) {
	out := make([]types.AyatRef, 0, n)
	if start != nil {
		ref := *start
		for len(out) < n {
			out = append(out, ref)
			next, ok := quran.Next(ref)
			if !ok {
				break
			}
			ref = next
		}
		return out, nil
	}
	used := make(map[types.AyatRef]bool, n)
	for len(out) < n {
		ref, err := quran.RandomReference(rng, used)
		if err != nil {
			return nil, err
		}
		used[ref] = true
		out = append(out, ref)
	}
	return out, nil
}

func runLabel(ref *types.AyatRef) string {
	if ref == nil {
		return "random"
	}
	return fmt.Sprintf("qs-%d-%d", ref.Surah, ref.Ayat)
}

func buildRunOutDir(outRoot, label string, now time.Time) string {
	name := normalizePathSegment(label)
	if name == "" {
		name = "run"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", label, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.MediaTool = (*ffmpeg.Adapter)(nil)
var _ ports.Aligner = (*whispercpp.Adapter)(nil)
var _ ports.Captioner = (*openrouter.Adapter)(nil)
var _ ports.AyatSource = (*alquran.Adapter)(nil)
var _ ports.BackgroundPicker = (*backgrounds.Library)(nil)
var _ segments.Splitter = (*energy.Splitter)(nil)
