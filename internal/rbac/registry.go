package rbac

import (
	"sort"
	"strings"
)

// Permission is a registered capability token of the form <category>.<action>.
type Permission string

// Registered permissions.
const (
	PermClientsView   Permission = "clients.view"
	PermClientsCreate Permission = "clients.create"
	PermClientsEdit   Permission = "clients.edit"
	PermClientsDelete Permission = "clients.delete"

	PermProspectsView     Permission = "prospects.view"
	PermProspectsCreate   Permission = "prospects.create"
	PermProspectsValidate Permission = "prospects.validate"

	PermPartnersView   Permission = "partners.view"
	PermPartnersCreate Permission = "partners.create"
	PermPartnersEdit   Permission = "partners.edit"
	PermPartnersDelete Permission = "partners.delete"

	PermPricingView Permission = "pricing.view"
	PermPricingEdit Permission = "pricing.edit"

	PermMaterialsView   Permission = "materials.view"
	PermMaterialsCreate Permission = "materials.create"
	PermMaterialsDelete Permission = "materials.delete"

	PermUsersView   Permission = "users.view"
	PermUsersCreate Permission = "users.create"

	PermRolesView   Permission = "roles.view"
	PermRolesCreate Permission = "roles.create"
	PermRolesEdit   Permission = "roles.edit"
	PermRolesDelete Permission = "roles.delete"

	PermIntegrationsHubSpot Permission = "integrations.hubspot"
	PermIntegrationsAI      Permission = "integrations.ai"

	PermAuditView Permission = "audit.view"
)

// PermissionInfo describes a registered permission for presentation.
type PermissionInfo struct {
	Name        Permission `json:"name"`
	Category    string     `json:"category"`
	Action      string     `json:"action"`
	Description string     `json:"description"`
}

var registry = []PermissionInfo{
	{PermClientsView, "clients", "view", "View clients"},
	{PermClientsCreate, "clients", "create", "Create clients"},
	{PermClientsEdit, "clients", "edit", "Edit clients"},
	{PermClientsDelete, "clients", "delete", "Delete clients"},
	{PermProspectsView, "prospects", "view", "View prospects"},
	{PermProspectsCreate, "prospects", "create", "Submit prospects"},
	{PermProspectsValidate, "prospects", "validate", "Approve or reject prospects"},
	{PermPartnersView, "partners", "view", "View partners"},
	{PermPartnersCreate, "partners", "create", "Create partners"},
	{PermPartnersEdit, "partners", "edit", "Edit partners"},
	{PermPartnersDelete, "partners", "delete", "Delete partners"},
	{PermPricingView, "pricing", "view", "View price plans"},
	{PermPricingEdit, "pricing", "edit", "Manage price plans"},
	{PermMaterialsView, "materials", "view", "View support materials"},
	{PermMaterialsCreate, "materials", "create", "Publish support materials"},
	{PermMaterialsDelete, "materials", "delete", "Remove support materials"},
	{PermUsersView, "users", "view", "View users"},
	{PermUsersCreate, "users", "create", "Create users"},
	{PermRolesView, "roles", "view", "View roles"},
	{PermRolesCreate, "roles", "create", "Create roles"},
	{PermRolesEdit, "roles", "edit", "Edit roles"},
	{PermRolesDelete, "roles", "delete", "Delete roles"},
	{PermIntegrationsHubSpot, "integrations", "hubspot", "Sync contacts to HubSpot"},
	{PermIntegrationsAI, "integrations", "ai", "Use AI assistance"},
	{PermAuditView, "audit", "view", "View the audit log"},
}

var registered = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(registry))
	for _, p := range registry {
		m[p.Name] = struct{}{}
	}
	return m
}()

// Registry returns every registered permission in declaration order.
func Registry() []PermissionInfo {
	out := make([]PermissionInfo, len(registry))
	copy(out, registry)
	return out
}

// GroupedRegistry returns registered permissions keyed by category.
func GroupedRegistry() map[string][]PermissionInfo {
	grouped := make(map[string][]PermissionInfo)
	for _, p := range registry {
		grouped[p.Category] = append(grouped[p.Category], p)
	}
	return grouped
}

// ParsePermission normalizes raw and reports whether it is registered.
func ParsePermission(raw string) (Permission, bool) {
	p := Permission(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := registered[p]
	return p, ok
}

// ParsePermissions normalizes and de-duplicates raw, returning the sorted
// set and any entries that are not registered.
func ParsePermissions(raw []string) ([]Permission, []string) {
	seen := make(map[Permission]struct{}, len(raw))
	var unknown []string
	for _, r := range raw {
		p, ok := ParsePermission(r)
		if !ok {
			unknown = append(unknown, r)
			continue
		}
		seen[p] = struct{}{}
	}
	out := make([]Permission, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, unknown
}

// AllPermissions returns every registered permission name.
func AllPermissions() []Permission {
	out := make([]Permission, 0, len(registry))
	for _, p := range registry {
		out = append(out, p.Name)
	}
	return out
}

// DefaultPermissions is the permission set seeded for each built-in role.
func DefaultPermissions(role Role) []Permission {
	switch role {
	case RoleSuperAdmin, RoleAdministrator, RoleAdmin:
		return AllPermissions()
	case RoleManager:
		return []Permission{
			PermClientsView, PermClientsCreate, PermClientsEdit, PermClientsDelete,
			PermProspectsView, PermProspectsCreate, PermProspectsValidate,
			PermPartnersView, PermPartnersCreate, PermPartnersEdit,
			PermPricingView,
			PermMaterialsView, PermMaterialsCreate, PermMaterialsDelete,
			PermUsersView, PermUsersCreate,
			PermRolesView,
			PermIntegrationsHubSpot, PermIntegrationsAI,
		}
	case RolePartner:
		return []Permission{
			PermClientsView, PermClientsCreate, PermClientsEdit,
			PermProspectsView, PermProspectsCreate,
			PermPricingView,
			PermMaterialsView,
			PermIntegrationsAI,
		}
	case RoleClient:
		return []Permission{
			PermPricingView,
			PermMaterialsView,
		}
	default:
		return nil
	}
}

// Strings converts permissions to their string form.
func Strings(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
