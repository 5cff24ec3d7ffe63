package domain

// CanAct decides whether actor may perform an administrative action
// (profile update, delete, force-logout) on target.
//
// Self-action is allowed with one exception: a super admin may not act on
// themself, so the last super admin cannot accidentally demote or lock
// themselves out. Across principals the hierarchy applies: plain users act
// on nobody else, admins only on plain users, and super admins on anyone
// except another super admin.
func CanAct(actor, target User) bool {
	if actor.ID == target.ID {
		return actor.Role != RoleSuperAdmin
	}

	switch actor.Role {
	case RoleUser:
		return false
	case RoleAdmin:
		return target.Role == RoleUser
	case RoleSuperAdmin:
		return target.Role != RoleSuperAdmin
	default:
		return false
	}
}

// CanAssignRole is the stricter check layered on top of CanAct for role
// changes: only super admins assign roles.
func CanAssignRole(actor User) bool {
	return actor.Role == RoleSuperAdmin
}
