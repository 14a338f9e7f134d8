package clients

import "time"

// Client statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Client is a customer account owned by a user.
type Client struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Company    *string   `json:"company,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Document   *string   `json:"document,omitempty"`
	Status     string    `json:"status"`
	OwnerID    int64     `json:"owner_id"`
	PartnerID  *int64    `json:"partner_id,omitempty"`
	ProspectID *int64    `json:"prospect_id,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
