package integration

import (
	"context"
	"errors"
	"net/http"
)

// DefaultResendBaseURL is the public Resend API.
const DefaultResendBaseURL = "https://api.resend.com"

type ResendConfig struct {
	APIKey  string
	From    string
	BaseURL string
}

// Email is a single transactional message.
type Email struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// Resend sends email through the Resend API.
type Resend struct {
	cfg        ResendConfig
	httpClient *http.Client
}

func NewResend(cfg ResendConfig, hc *http.Client) *Resend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultResendBaseURL
	}
	if hc == nil {
		hc = NewHTTPClient()
	}
	return &Resend{cfg: cfg, httpClient: hc}
}

func (c *Resend) Configured() bool {
	return c != nil && c.cfg.APIKey != "" && c.cfg.From != ""
}

// Send delivers e and returns the provider message id.
func (c *Resend) Send(ctx context.Context, e Email) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if len(e.To) == 0 || e.Subject == "" {
		return "", errors.New("resend: recipient and subject required")
	}
	payload := struct {
		From string `json:"from"`
		Email
	}{From: c.cfg.From, Email: e}
	var out struct {
		ID string `json:"id"`
	}
	header := http.Header{"Authorization": {"Bearer " + c.cfg.APIKey}}
	if err := doJSON(ctx, c.httpClient, "resend", http.MethodPost, joinURL(c.cfg.BaseURL, "/emails"), header, payload, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}
