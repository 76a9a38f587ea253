package domain

// Role is the closed set of membership roles within an organization.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleMember  Role = "MEMBER"
)

// ParseRole validates a raw role value.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleManager, RoleMember:
		return Role(raw), nil
	default:
		return "", ErrInvalidRole
	}
}

// Capability names an action gated by membership role.
type Capability string

const (
	CapManageWorkflows Capability = "manage_workflows"
	CapManageProjects  Capability = "manage_projects"
	CapManageMembers   Capability = "manage_members"
	CapManageSprints   Capability = "manage_sprints"
	CapViewReports     Capability = "view_reports"
)

// Can reports whether the role grants a capability. All role checks in the
// tenant APIs go through this single function.
func (r Role) Can(cap Capability) bool {
	switch cap {
	case CapManageMembers:
		return r == RoleAdmin
	case CapManageWorkflows, CapManageProjects, CapManageSprints, CapViewReports:
		return r == RoleAdmin || r == RoleManager
	default:
		return false
	}
}
