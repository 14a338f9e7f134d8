package integration

import (
	"context"
	"net/http"
)

const DefaultHubSpotBaseURL = "https://api.hubapi.com"

type HubSpotConfig struct {
	Token   string
	BaseURL string
}

// Contact is the subset of HubSpot contact properties the CRM pushes.
type Contact struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstname,omitempty" validate:"omitempty,max=100"`
	LastName  string `json:"lastname,omitempty" validate:"omitempty,max=100"`
	Company   string `json:"company,omitempty" validate:"omitempty,max=200"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=40"`
}

// HubSpot creates CRM contacts through a private-app token.
type HubSpot struct {
	cfg        HubSpotConfig
	httpClient *http.Client
}

func NewHubSpot(cfg HubSpotConfig, hc *http.Client) *HubSpot {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHubSpotBaseURL
	}
	if hc == nil {
		hc = NewHTTPClient()
	}
	return &HubSpot{cfg: cfg, httpClient: hc}
}

func (c *HubSpot) Configured() bool {
	return c != nil && c.cfg.Token != ""
}

// CreateContact returns the HubSpot object id of the new contact.
func (c *HubSpot) CreateContact(ctx context.Context, contact Contact) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	payload := map[string]Contact{"properties": contact}
	var out struct {
		ID string `json:"id"`
	}
	header := http.Header{"Authorization": {"Bearer " + c.cfg.Token}}
	if err := doJSON(ctx, c.httpClient, "hubspot", http.MethodPost, joinURL(c.cfg.BaseURL, "/crm/v3/objects/contacts"), header, payload, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}
