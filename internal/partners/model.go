package partners

import "time"

// Partner tiers.
const (
	TierBronze = "bronze"
	TierSilver = "silver"
	TierGold   = "gold"
)

// Partner is a reseller organisation.
type Partner struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Document       *string   `json:"document,omitempty"`
	ContactEmail   *string   `json:"contact_email,omitempty"`
	Tier           string    `json:"tier"`
	CommissionRate float64   `json:"commission_rate"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreatePartnerRequest struct {
	Name           string  `json:"name" validate:"required,max=200"`
	Document       *string `json:"document,omitempty" validate:"omitempty,max=30"`
	ContactEmail   *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	Tier           string  `json:"tier" validate:"omitempty,oneof=bronze silver gold"`
	CommissionRate float64 `json:"commission_rate" validate:"gte=0,lte=100"`
}

type UpdatePartnerRequest struct {
	Name           *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Document       *string  `json:"document,omitempty" validate:"omitempty,max=30"`
	ContactEmail   *string  `json:"contact_email,omitempty" validate:"omitempty,email"`
	Tier           *string  `json:"tier,omitempty" validate:"omitempty,oneof=bronze silver gold"`
	CommissionRate *float64 `json:"commission_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	IsActive       *bool    `json:"is_active,omitempty"`
}
