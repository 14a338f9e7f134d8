package users

import (
	"time"

	"github.com/partnerhub/partner-crm/internal/rbac"
)

// User represents a user account for management.
type User struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        rbac.Role  `json:"role"`
	PartnerID   *int64     `json:"partner_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SubjectRole implements rbac.Subject.
func (u User) SubjectRole() rbac.Role { return u.Role }

// CreateInput carries a new account.
type CreateInput struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Name      string `json:"name" validate:"required,max=120"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Role      string `json:"role" validate:"required"`
	PartnerID *int64 `json:"partner_id" validate:"omitnil,gt=0"`
}
