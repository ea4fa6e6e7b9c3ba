package constants

// Коды ролей (roles.code)
const (
	RoleTeacher    = "TEACHER"
	RoleAdmin      = "ADMIN"
	RoleSupervisor = "SUPERVISOR"
)
