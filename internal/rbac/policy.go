package rbac

// CreationPolicy decides which roles a creator may assign. It is a pure
// level comparison: equal levels are allowed, so a manager can create
// another manager.
type CreationPolicy struct{}

// Allows reports whether creator may create an account with target.
// Creators without a known level are denied.
func (CreationPolicy) Allows(creator, target Role) bool {
	if creator.Level() == 0 {
		return false
	}
	return creator.Level() >= target.Level()
}

// Roles lists the built-in roles creator may assign, level descending.
func (p CreationPolicy) Roles(creator Role) []Role {
	out := make([]Role, 0, len(builtinRoles))
	for _, r := range builtinRoles {
		if p.Allows(creator, r) {
			out = append(out, r)
		}
	}
	return out
}

// VisibilityPolicy decides which roles a viewer may see. Unlike
// CreationPolicy it is special-cased per role:
//   - superadmin sees everything
//   - administrator/admin see everything except superadmin
//   - manager sees known roles strictly below administrator
//   - any other role sees only itself
type VisibilityPolicy struct{}

// Allows reports whether viewer may see accounts holding target.
func (VisibilityPolicy) Allows(viewer, target Role) bool {
	switch {
	case viewer == "":
		return false
	case viewer == RoleSuperAdmin:
		return true
	case viewer.IsAdministrative():
		return target != RoleSuperAdmin
	case viewer == RoleManager:
		return target.Known() && target.Level() < RoleAdministrator.Level()
	default:
		return viewer == target
	}
}

// Roles lists the built-in roles viewer may see, level descending.
// A custom-role viewer gets only its own role.
func (p VisibilityPolicy) Roles(viewer Role) []Role {
	out := make([]Role, 0, len(builtinRoles))
	for _, r := range builtinRoles {
		if p.Allows(viewer, r) {
			out = append(out, r)
		}
	}
	if len(out) == 0 && viewer != "" && !viewer.Known() {
		out = append(out, viewer)
	}
	return out
}

// CanCreateRole parses both roles and applies CreationPolicy.
func CanCreateRole(creator, target string) bool {
	return CreationPolicy{}.Allows(ParseRole(creator), ParseRole(target))
}

// CanViewRole parses both roles and applies VisibilityPolicy.
func CanViewRole(viewer, target string) bool {
	return VisibilityPolicy{}.Allows(ParseRole(viewer), ParseRole(target))
}

// CreatableRoles lists what role may create.
func CreatableRoles(role Role) []Role {
	return CreationPolicy{}.Roles(role)
}

// ViewableRoles lists what role may see.
func ViewableRoles(role Role) []Role {
	return VisibilityPolicy{}.Roles(role)
}

// FilterUsersByPermission keeps the subjects whose role viewer may see.
func FilterUsersByPermission[S Subject](subjects []S, viewer Role) []S {
	policy := VisibilityPolicy{}
	out := make([]S, 0, len(subjects))
	for _, s := range subjects {
		if policy.Allows(viewer, s.SubjectRole()) {
			out = append(out, s)
		}
	}
	return out
}
