package integration

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-1.5-flash"
)

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Gemini generates text with the Google Generative Language API.
type Gemini struct {
	cfg        GeminiConfig
	httpClient *http.Client
}

func NewGemini(cfg GeminiConfig, hc *http.Client) *Gemini {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if hc == nil {
		hc = NewHTTPClient()
	}
	return &Gemini{cfg: cfg, httpClient: hc}
}

func (c *Gemini) Configured() bool {
	return c != nil && c.cfg.APIKey != ""
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

// GenerateText sends a single-turn prompt and joins the text parts of the
// first candidate.
func (c *Gemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	payload := struct {
		Contents []geminiContent `json:"contents"`
	}{Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}}
	var out struct {
		Candidates []struct {
			Content geminiContent `json:"content"`
		} `json:"candidates"`
	}
	endpoint := joinURL(c.cfg.BaseURL, "/v1beta/models/"+url.PathEscape(c.cfg.Model)+":generateContent")
	header := http.Header{"X-Goog-Api-Key": {c.cfg.APIKey}}
	if err := doJSON(ctx, c.httpClient, "gemini", http.MethodPost, endpoint, header, payload, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 {
		return "", errors.New("gemini: empty response")
	}
	var b strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String()), nil
}
