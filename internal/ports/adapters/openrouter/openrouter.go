package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/forPelevin/ayatreel/internal/domain/caption"
	"github.com/forPelevin/ayatreel/internal/ports/adapters/endpoint"
	"github.com/forPelevin/ayatreel/internal/types"
)

var Endpoint = endpoint.Policy{
	Name:         "OPENROUTER_BASE_URL",
	AllowedName:  "OPENROUTER_ALLOWED_HOSTS",
	DefaultURL:   "https://openrouter.ai",
	DefaultHosts: []string{"openrouter.ai", "api.openrouter.ai"},
}

const (
	requestTimeout  = 60 * time.Second
	maxCaptionRunes = 2200
	defaultModel    = "anthropic/claude-3.5-sonnet"
)

type Adapter struct {
	key     string
	model   string
	baseURL string
	client  *http.Client
}

func New(apiKey, model, baseURL string) *Adapter {
	if model == "" {
		model = defaultModel
	}
	return &Adapter{key: apiKey, model: model, baseURL: Endpoint.Normalize(baseURL), client: &http.Client{Timeout: 2 * time.Minute}}
}

// Caption asks the model for a short-video caption. Without an API key, or
// when the model answers with something unusable, the template caption is
// returned. Transport and HTTP errors are returned to the caller.
func (a *Adapter) Caption(ctx context.Context, ayat types.Ayat, hashtags string) (string, error) {
	if strings.TrimSpace(hashtags) == "" {
		hashtags = caption.DefaultHashtags
	}
	fallback := caption.Template(ayat.SurahName, ayat.Ref.Ayat, ayat.TextTranslation, hashtags)
	if a.key == "" {
		return fallback, nil
	}

	payload := map[string]any{
		"model":  a.model,
		"stream": false,
		"messages": []map[string]any{
			{"role": "system", "content": "You write engaging, respectful Indonesian captions for short Quran recitation videos."},
			{"role": "user", "content": buildPrompt(ayat, hashtags)},
		},
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name": "ayat_caption",
				"schema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"caption": map[string]any{"type": "string"},
					},
					"required": []string{"caption"},
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.baseURL+"/api/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.WithStack(err)
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", errors.Errorf("openrouter timeout after %s (model=%s)", requestTimeout, a.model)
		}
		return "", errors.WithStack(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", errors.Errorf("openrouter status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return "", errors.Errorf("openrouter status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", errors.Wrap(err, "decode openrouter response")
	}
	if len(raw.Choices) == 0 {
		return fallback, nil
	}
	content, err := messageContentToString(raw.Choices[0].Message.Content)
	if err != nil {
		return fallback, nil
	}
	return parseCaption(content, hashtags, fallback), nil
}

// parseCaption accepts the schema object or, from providers that ignore
// response_format, plain text. Hashtags are appended when the model drops them.
func parseCaption(content, hashtags, fallback string) string {
	text := ""
	if clean, err := extractJSONObject(content); err == nil {
		var out struct {
			Caption string `json:"caption"`
		}
		if json.Unmarshal([]byte(clean), &out) == nil {
			text = out.Caption
		}
	} else {
		text = stripFences(content)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}
	text = truncate(text, maxCaptionRunes)
	if first := strings.Fields(hashtags); len(first) > 0 && !strings.Contains(text, first[0]) {
		text += "\n\n" + hashtags
	}
	return text
}

func buildPrompt(ayat types.Ayat, hashtags string) string {
	var b strings.Builder
	b.WriteString("Write a TikTok caption in Indonesian for a Quran recitation video.\n")
	b.WriteString("Surah: " + ayat.SurahName + "\n")
	b.WriteString("Ayat: " + strconv.Itoa(ayat.Ref.Ayat) + "\n")
	b.WriteString("Arabic: " + ayat.TextArab + "\n")
	b.WriteString("Translation: " + ayat.TextTranslation + "\n\n")
	b.WriteString("Open with a short engaging title with a fitting emoji, add one or two sentences of reflection, ")
	b.WriteString("quote the translation with the reference, close with a short message and end with these hashtags: ")
	b.WriteString(hashtags + "\n")
	b.WriteString("Keep it under 200 words. Return strictly valid JSON (no markdown, no code fences) matching the provided schema.")
	return b.String()
}

func messageContentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []any:
		// Some providers return an array of {type,text} parts.
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		s := b.String()
		if strings.TrimSpace(s) == "" {
			return "", errors.New("openrouter: empty content")
		}
		return s, nil
	default:
		return "", errors.Errorf("openrouter: unexpected content type %T", v)
	}
}

func stripFences(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
	}
	return strings.TrimSpace(t)
}

func extractJSONObject(s string) (string, error) {
	t := stripFences(s)
	if t == "" {
		return "", errors.New("openrouter: empty content")
	}
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", errors.Errorf("openrouter: could not locate JSON object in: %q", truncate(t, 200))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
