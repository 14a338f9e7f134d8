package materials

import "time"

// Material is a support asset shared with partners. Files live elsewhere;
// only the link is stored.
type Material struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Category    string    `json:"category"`
	URL         string    `json:"url"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateMaterialRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    string  `json:"category" validate:"required,max=60"`
	URL         string  `json:"url" validate:"required,url"`
}
