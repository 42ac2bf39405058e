package config

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/forPelevin/ayatreel/internal/domain/caption"
	"github.com/forPelevin/ayatreel/internal/domain/overlay"
	"github.com/forPelevin/ayatreel/internal/domain/quran"
	"github.com/forPelevin/ayatreel/internal/domain/segments"
	"github.com/forPelevin/ayatreel/internal/domain/textsplit"
	"github.com/forPelevin/ayatreel/internal/domain/timing"
	"github.com/forPelevin/ayatreel/internal/types"
)

// Tuning holds every numeric and cosmetic knob of video generation.
type Tuning struct {
	Timing    timing.Config    `yaml:"timing"`
	Segments  segments.Config  `yaml:"segments"`
	TextSplit textsplit.Config `yaml:"text_split"`
	Overlay   overlay.Config   `yaml:"overlay"`

	Qari     string `yaml:"qari"`
	Hashtags string `yaml:"hashtags"`
	// HookChrome renders the caption hook as the chrome element.
	HookChrome bool `yaml:"hook_chrome"`
	// DetectSegments enables silence-based splitting when no word timings
	// are available.
	DetectSegments bool `yaml:"detect_segments"`
}

func Default() Tuning {
	return Tuning{
		Timing:         timing.DefaultConfig(),
		Segments:       segments.DefaultConfig(),
		TextSplit:      textsplit.DefaultConfig(),
		Overlay:        overlay.DefaultConfig(),
		Qari:           quran.DefaultQari,
		Hashtags:       caption.DefaultHashtags,
		HookChrome:     true,
		DetectSegments: true,
	}
}

// Load reads a YAML tuning file over the defaults. An empty path returns the
// defaults; keys absent from the file keep their default values and unknown
// keys are rejected.
func Load(path string) (Tuning, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Tuning{}, errors.Wrapf(types.ErrNotFound, "tuning file %s", path)
		}
		return Tuning{}, errors.Wrap(err, "read tuning")
	}
	if err := Decode(contents, &cfg); err != nil {
		return Tuning{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Tuning{}, err
	}
	return cfg, nil
}

func Decode(contents []byte, cfg *Tuning) error {
	if len(bytes.TrimSpace(contents)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(contents))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return errors.Wrapf(types.ErrInvalidInput, "unmarshal tuning: %v", err)
	}
	return nil
}

func (t Tuning) Validate() error {
	if err := t.Timing.Validate(); err != nil {
		return err
	}
	if err := t.Segments.Validate(); err != nil {
		return err
	}
	if err := t.TextSplit.Validate(); err != nil {
		return err
	}
	if err := t.Overlay.Validate(); err != nil {
		return err
	}
	if _, ok := quran.Qari[t.Qari]; !ok {
		return errors.Wrapf(types.ErrInvalidInput, "unknown qari %q (known: %v)", t.Qari, quran.QariNames())
	}
	return nil
}

// Marshal renders the tuning as YAML, e.g. to write a starting file.
func (t Tuning) Marshal() ([]byte, error) {
	b, err := yaml.Marshal(&t)
	return b, errors.WithStack(err)
}
