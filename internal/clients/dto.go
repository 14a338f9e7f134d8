package clients

// CreateClientRequest is the POST /clients body.
type CreateClientRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Company   *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Document  *string `json:"document,omitempty" validate:"omitempty,max=30"`
	PartnerID *int64  `json:"partner_id,omitempty" validate:"omitempty,gt=0"`
	Notes     *string `json:"notes,omitempty"`
}

// UpdateClientRequest carries a partial update; nil fields are left as is.
type UpdateClientRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Company  *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Document *string `json:"document,omitempty" validate:"omitempty,max=30"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Notes    *string `json:"notes,omitempty"`
}

// ListClientsRequest filters and pages GET /clients.
type ListClientsRequest struct {
	Search  string
	Status  string
	OwnerID *int64
	Limit   int
	Offset  int
}
