package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/ayatreel/internal/batch"
	"github.com/forPelevin/ayatreel/internal/pipeline"
	"github.com/forPelevin/ayatreel/internal/ports/adapters/endpoint"
	"github.com/forPelevin/ayatreel/internal/types"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a batch of ayat videos",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}
	cmd.Flags().String("out", "out", "Output directory")
	cmd.Flags().Int("count", 1, "Number of videos")
	cmd.Flags().Int("surah", 0, "Start at this surah (requires --ayat)")
	cmd.Flags().Int("ayat", 0, "Start at this ayat")
	cmd.Flags().String("backgrounds", "backgrounds", "Directory of background videos")
	cmd.Flags().String("qari", "", "Reciter (alafasy, abdulbasit, sudais, husary, minshawi)")
	cmd.Flags().Int64("seed", 0, "Random seed for ayat and background selection (0: time based)")
	cmd.Flags().String("whisper-model", os.Getenv("WHISPER_MODEL"), "whisper.cpp model; empty disables word alignment")

	// Hidden tuning flag (internal)
	cmd.Flags().String("whisper-bin", ".cache/bin/whisper.cpp", "whisper.cpp binary")
	_ = cmd.Flags().MarkHidden("whisper-bin")
	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	outDir, _ := cmd.Flags().GetString("out")
	count, _ := cmd.Flags().GetInt("count")
	surah, _ := cmd.Flags().GetInt("surah")
	ayat, _ := cmd.Flags().GetInt("ayat")
	bgDir, _ := cmd.Flags().GetString("backgrounds")
	qari, _ := cmd.Flags().GetString("qari")
	seed, _ := cmd.Flags().GetInt64("seed")
	whisperModel, _ := cmd.Flags().GetString("whisper-model")
	whisperBin, _ := cmd.Flags().GetString("whisper-bin")

	tuning, err := loadTuning(cmd)
	if err != nil {
		return err
	}
	if qari != "" {
		tuning.Qari = qari
	}

	var ref *types.AyatRef
	if surah != 0 || ayat != 0 {
		if surah == 0 || ayat == 0 {
			return fmt.Errorf("config: --surah and --ayat must be set together")
		}
		ref = &types.AyatRef{Surah: surah, Ayat: ayat}
	}

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry := batch.NewRegistry()
	job := registry.Start()
	defer registry.Finish(job.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Hour)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		registry.CancelAll()
	}()

	cfg := pipeline.Config{
		OutDir:         outDir,
		Count:          count,
		Ref:            ref,
		Seed:           seed,
		BackgroundsDir: bgDir,
		Tuning:         tuning,
		Logger:         logger,
		Job:            job,

		FFmpegPath: "ffmpeg",

		WhisperBin:   whisperBin,
		WhisperModel: whisperModel,

		OpenRouterAPIKey:       os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:        os.Getenv("OPENROUTER_MODEL"),
		OpenRouterBaseURL:      os.Getenv("OPENROUTER_BASE_URL"),
		OpenRouterAllowedHosts: endpoint.SplitHosts(os.Getenv("OPENROUTER_ALLOWED_HOSTS")),

		QuranBaseURL:      os.Getenv("QURAN_API_BASE_URL"),
		QuranAllowedHosts: endpoint.SplitHosts(os.Getenv("QURAN_ALLOWED_HOSTS")),
	}
	if cfg.OpenRouterAPIKey == "" {
		logger.Info("OPENROUTER_API_KEY not set, using template captions")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return pipeline.Run(ctx, cfg)
}
