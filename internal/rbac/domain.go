package rbac

import (
	"strings"
)

// Role is a normalized role identifier. Construct it with ParseRole.
type Role string

// Built-in roles, highest privilege first.
const (
	RoleSuperAdmin    Role = "superadmin"
	RoleAdministrator Role = "administrator"
	RoleAdmin         Role = "admin"
	RoleManager       Role = "manager"
	RolePartner       Role = "partner"
	RoleClient        Role = "client"
)

// builtinRoles is ordered by level descending; ties keep declaration order.
var builtinRoles = []Role{
	RoleSuperAdmin,
	RoleAdministrator,
	RoleAdmin,
	RoleManager,
	RolePartner,
	RoleClient,
}

var roleLevels = map[Role]int{
	RoleSuperAdmin:    5,
	RoleAdministrator: 4,
	RoleAdmin:         4,
	RoleManager:       3,
	RolePartner:       2,
	RoleClient:        1,
}

// ParseRole normalizes a raw role string. It never fails: unknown names
// are kept (custom roles) and simply have level 0.
func ParseRole(raw string) Role {
	return Role(strings.ToLower(strings.TrimSpace(raw)))
}

// BuiltinRoles returns the fixed role lattice ordered by level descending.
func BuiltinRoles() []Role {
	out := make([]Role, len(builtinRoles))
	copy(out, builtinRoles)
	return out
}

// Level returns the hierarchy level, 0 for unknown or empty roles.
func (r Role) Level() int {
	return roleLevels[r]
}

// Known reports whether r is one of the built-in roles.
func (r Role) Known() bool {
	_, ok := roleLevels[r]
	return ok
}

// IsAdministrative reports whether r is administrator or its alias admin.
func (r Role) IsAdministrative() bool {
	return r == RoleAdministrator || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// LevelOf parses raw and returns its level.
func LevelOf(raw string) int {
	return ParseRole(raw).Level()
}

// Principal describes the authenticated actor.
type Principal struct {
	UserID int64
	Email  string
	Role   Role
}

// IsZero reports whether p carries no identity.
func (p Principal) IsZero() bool {
	return p.UserID == 0 && p.Role == ""
}

// AtLeast reports whether the principal's level reaches role's level.
func (p Principal) AtLeast(role Role) bool {
	return p.Role.Level() > 0 && p.Role.Level() >= role.Level()
}

// Subject is anything carrying a role, typically a user record.
type Subject interface {
	SubjectRole() Role
}
