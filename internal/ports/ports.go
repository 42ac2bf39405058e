package ports

import (
	"context"

	"github.com/forPelevin/ayatreel/internal/types"
)

// MediaTool wraps the audio/video toolchain.
type MediaTool interface {
	// ProbeAudio fails with types.ErrInvalidInput unless the duration is
	// positive.
	ProbeAudio(ctx context.Context, path string) (types.AudioProfile, error)
	// DecodePCM returns mono float32 samples at sampleRate. A missing input
	// fails with types.ErrNotFound.
	DecodePCM(ctx context.Context, path string, sampleRate int) (types.PCM, error)
	// ExtractAudioMono16k writes the 16 kHz mono WAV the aligner expects.
	ExtractAudioMono16k(ctx context.Context, in, outWav string) error
	// RenderPlan composes plan.Background and plan.Audio with the overlay
	// script at assPath into outPath.
	RenderPlan(ctx context.Context, plan types.CompositionPlan, assPath, outPath string) error
}

// Aligner produces per-word timestamps for a recitation.
type Aligner interface {
	Align(ctx context.Context, audioPath, text, cacheDir string) ([]types.WordTiming, error)
}

type Captioner interface {
	Caption(ctx context.Context, ayat types.Ayat, hashtags string) (string, error)
}

// AyatSource fetches verse text, translation and recitation audio.
type AyatSource interface {
	Ayat(ctx context.Context, ref types.AyatRef, qari string) (types.Ayat, error)
	DownloadAudio(ctx context.Context, url, outPath string) error
}

type BackgroundPicker interface {
	Pick() (string, error)
}
