package roles

import (
	"time"

	"github.com/partnerhub/partner-crm/internal/rbac"
)

// Role is a row of the roles table: a named permission set.
type Role struct {
	ID          int64     `json:"id"`
	Name        rbac.Role `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	IsSystem    bool      `json:"is_system"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateInput carries a new custom role.
type CreateInput struct {
	Name        string   `json:"name" validate:"required,min=2,max=50"`
	Description string   `json:"description" validate:"max=255"`
	Permissions []string `json:"permissions" validate:"required"`
}

// UpdateInput patches a role; nil fields are left untouched.
type UpdateInput struct {
	Name        *string   `json:"name" validate:"omitnil,min=2,max=50"`
	Description *string   `json:"description" validate:"omitnil,max=255"`
	Permissions *[]string `json:"permissions"`
	IsActive    *bool     `json:"is_active"`
}

// SystemRoles returns the built-in role rows seeded at startup.
func SystemRoles() []Role {
	builtin := rbac.BuiltinRoles()
	out := make([]Role, 0, len(builtin))
	for _, name := range builtin {
		out = append(out, Role{
			Name:        name,
			Description: systemDescriptions[name],
			Permissions: rbac.Strings(rbac.DefaultPermissions(name)),
			IsSystem:    true,
			IsActive:    true,
		})
	}
	return out
}

var systemDescriptions = map[rbac.Role]string{
	rbac.RoleSuperAdmin:    "Full access including role administration",
	rbac.RoleAdministrator: "Administers users, partners and catalogue",
	rbac.RoleAdmin:         "Alias of administrator",
	rbac.RoleManager:       "Manages partners and validates prospects",
	rbac.RolePartner:       "Partner organisation member",
	rbac.RoleClient:        "End client with read access to pricing and materials",
}
