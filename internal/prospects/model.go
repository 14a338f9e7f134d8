package prospects

import "time"

// Prospect statuses. A prospect leaves pending exactly once.
const (
	StatusPending   = "pending"
	StatusValidated = "validated"
	StatusRejected  = "rejected"
)

// Prospect is a lead submitted by a partner for manager review.
type Prospect struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Company     *string    `json:"company,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	Status      string     `json:"status"`
	SubmittedBy int64      `json:"submitted_by"`
	PartnerID   *int64     `json:"partner_id,omitempty"`
	ReviewedBy  *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNote  *string    `json:"review_note,omitempty"`
	ClientID    *int64     `json:"client_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateProspectRequest is the POST /prospects body.
type CreateProspectRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Company   *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=4000"`
	PartnerID *int64  `json:"partner_id,omitempty" validate:"omitempty,gt=0"`
}

// ValidateProspectRequest is the manager decision on a pending prospect.
type ValidateProspectRequest struct {
	Status string  `json:"status" validate:"required,oneof=validated rejected"`
	Note   *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// ListProspectsRequest filters and pages GET /prospects.
type ListProspectsRequest struct {
	Status      string
	SubmittedBy *int64
	Limit       int
	Offset      int
}

// Review carries a decision into the repository.
type Review struct {
	Status     string
	ReviewerID int64
	Note       *string
}
