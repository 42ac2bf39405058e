package alquran

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/forPelevin/ayatreel/internal/domain/quran"
	"github.com/forPelevin/ayatreel/internal/ports/adapters/endpoint"
	"github.com/forPelevin/ayatreel/internal/types"
)

var Endpoint = endpoint.Policy{
	Name:         "QURAN_API_BASE_URL",
	AllowedName:  "QURAN_ALLOWED_HOSTS",
	DefaultURL:   "https://api.alquran.cloud/v1",
	DefaultHosts: []string{"api.alquran.cloud"},
}

const (
	translationEdition = "id.indonesian"
	defaultAttempts    = 3
	defaultBaseDelay   = 500 * time.Millisecond
)

type Adapter struct {
	baseURL   string
	client    *http.Client
	attempts  int
	baseDelay time.Duration
}

func New(baseURL string) *Adapter {
	return &Adapter{
		baseURL:   Endpoint.Normalize(baseURL),
		client:    &http.Client{Timeout: 30 * time.Second},
		attempts:  defaultAttempts,
		baseDelay: defaultBaseDelay,
	}
}

type ayahResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Text  string `json:"text"`
		Audio string `json:"audio"`
		Surah struct {
			Name        string `json:"name"`
			EnglishName string `json:"englishName"`
		} `json:"surah"`
	} `json:"data"`
}

// Ayat fetches the Arabic text with recitation audio for qari and the
// Indonesian translation.
func (a *Adapter) Ayat(ctx context.Context, ref types.AyatRef, qari string) (types.Ayat, error) {
	if !quran.IsValid(ref) {
		return types.Ayat{}, errors.Wrapf(types.ErrInvalidInput, "ayat %d:%d does not exist", ref.Surah, ref.Ayat)
	}
	if _, ok := quran.Qari[qari]; !ok {
		qari = quran.DefaultQari
	}

	arab, err := a.ayah(ctx, ref, quran.QariEdition(qari))
	if err != nil {
		return types.Ayat{}, err
	}
	trans, err := a.ayah(ctx, ref, translationEdition)
	if err != nil {
		return types.Ayat{}, err
	}
	return types.Ayat{
		Ref:             ref,
		SurahName:       arab.Data.Surah.EnglishName,
		SurahNameArabic: arab.Data.Surah.Name,
		TextArab:        strings.TrimSpace(arab.Data.Text),
		TextTranslation: strings.TrimSpace(trans.Data.Text),
		AudioURL:        arab.Data.Audio,
		Qari:            qari,
	}, nil
}

func (a *Adapter) ayah(ctx context.Context, ref types.AyatRef, edition string) (ayahResponse, error) {
	url := fmt.Sprintf("%s/ayah/%d:%d/%s", a.baseURL, ref.Surah, ref.Ayat, edition)
	var out ayahResponse
	err := a.retry(ctx, func() error {
		body, err := a.get(ctx, url)
		if err != nil {
			return err
		}
		defer body.Close()
		out = ayahResponse{}
		if err := json.NewDecoder(body).Decode(&out); err != nil {
			return errors.Wrap(err, "decode ayah response")
		}
		return nil
	})
	if err != nil {
		return ayahResponse{}, err
	}
	if out.Code != http.StatusOK {
		return ayahResponse{}, errors.Wrapf(types.ErrNotFound, "ayah %d:%d/%s: code %d %s", ref.Surah, ref.Ayat, edition, out.Code, out.Status)
	}
	return out, nil
}

// DownloadAudio writes url to outPath through a temporary file so a failed
// download never leaves a truncated file behind.
func (a *Adapter) DownloadAudio(ctx context.Context, url, outPath string) error {
	if strings.TrimSpace(url) == "" {
		return errors.Wrap(types.ErrNotFound, "empty audio url")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.WithStack(err)
	}
	return a.retry(ctx, func() error {
		body, err := a.get(ctx, url)
		if err != nil {
			return err
		}
		defer body.Close()

		tmp := outPath + ".part"
		f, err := os.Create(tmp)
		if err != nil {
			return permanent(errors.WithStack(err))
		}
		if _, err := io.Copy(f, body); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return errors.Wrap(err, "download audio")
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(tmp)
			return errors.WithStack(err)
		}
		return errors.WithStack(os.Rename(tmp, outPath))
	})
}

func (a *Adapter) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, permanent(errors.WithStack(err))
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, permanent(errors.Wrapf(types.ErrNotFound, "GET %s", url))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		err := errors.Errorf("GET %s: status %d", url, resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, permanent(err)
		}
		return nil, err
	}
	return resp.Body, nil
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return permanentError{err: err} }

// retry runs fn up to a.attempts times, doubling the delay between attempts.
// Permanent errors and context cancellation stop it early.
func (a *Adapter) retry(ctx context.Context, fn func() error) error {
	delay := a.baseDelay
	var err error
	for attempt := 1; attempt <= a.attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		var p permanentError
		if errors.As(err, &p) {
			return p.err
		}
		if attempt == a.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return errors.Wrapf(err, "after %d attempts", a.attempts)
}
