package pricing

import "time"

// Plan is a sellable price plan. Amounts are stored in minor units.
type Plan struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreatePlanRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	AmountCents int64   `json:"amount_cents" validate:"gte=0"`
	Currency    string  `json:"currency" validate:"omitempty,len=3"`
}

type UpdatePlanRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	AmountCents *int64  `json:"amount_cents,omitempty" validate:"omitempty,gte=0"`
	Currency    *string `json:"currency,omitempty" validate:"omitempty,len=3"`
	IsActive    *bool   `json:"is_active,omitempty"`
}
