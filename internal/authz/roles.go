package authz

const (
	RoleEmployee   = 10
	RoleSupervisor = 20
	RoleAuditor    = 30
	RoleAdmin      = 50
)

func IsElevated(roleID int) bool {
	return roleID == RoleSupervisor || roleID == RoleAdmin
}

func IsReadOnly(roleID int) bool {
	return roleID == RoleAuditor
}
