// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"text/template"

	"github.com/pdiddy/manhwa-translate/internal/httputil"
	"github.com/pdiddy/manhwa-translate/pkg/types"
)

// promptTmpl is the fixed instruction sent with every text block.
var promptTmpl = template.Must(template.New("translate").Parse(
	"You are a Korean-English translator with expertise in manhwa dialogue.\n" +
		"Translate the following Korean text:\n" +
		"{{.Text}}\n" +
		"Return only the translated English sentence."))

// GeminiBackend calls the generateContent endpoint of the generative-language API.
type GeminiBackend struct {
	Config types.TranslationConfig
	Client *http.Client
	Logger *slog.Logger
}

// NewGeminiBackend returns a backend for cfg. It fails with ErrMissingAPIKey
// before any request is made when cfg has no key.
func NewGeminiBackend(cfg types.TranslationConfig) (*GeminiBackend, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	return &GeminiBackend{Config: cfg}, nil
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Translate implements Backend. The request is bounded by Config.Timeout.
func (g *GeminiBackend) Translate(ctx context.Context, text string) (string, error) {
	prompt, err := renderPrompt(text)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	if g.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Config.Timeout)
		defer cancel()
	}

	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     g.Config.Temperature,
			TopK:            g.Config.TopK,
			TopP:            g.Config.TopP,
			MaxOutputTokens: g.Config.MaxOutputTokens,
		},
	}

	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("translate.request", "model", g.Config.Model, "preview", Preview(text))

	var resp geminiResponse
	if err := httputil.PostJSON(ctx, g.Client, g.endpoint(), body, &resp, g.Config.RateLimitRetries, logger); err != nil {
		return "", fmt.Errorf("calling translation API: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", errors.New("no content parts in first candidate")
	}
	return strings.TrimSpace(parts[0].Text), nil
}

// endpoint returns {BaseURL}/models/{model}:generateContent?key=KEY.
func (g *GeminiBackend) endpoint() string {
	base := strings.TrimRight(g.Config.BaseURL, "/")
	return base + "/models/" + url.PathEscape(g.Config.Model) + ":generateContent?key=" + url.QueryEscape(g.Config.APIKey)
}

func renderPrompt(text string) (string, error) {
	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
