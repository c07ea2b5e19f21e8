package authz

// Capability names a single server-side permission. Handlers authorize
// against these constants; roles are never interpreted client-side.
type Capability string

const (
	CapTimeclockPunch   Capability = "timeclock:punch"
	CapTimeclockReadAll Capability = "timeclock:read_all"
	CapEmployeesRead    Capability = "employees:read"
	CapEmployeesWrite   Capability = "employees:write"
	CapSecurityRead     Capability = "security:read"
)

// Role is the coarse grouping stored on the employee record.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleScheduler Role = "SCHEDULER"
	RoleCaregiver Role = "CAREGIVER"
)

// NormalizeRole maps arbitrary stored role text onto a known Role,
// defaulting to the least-privileged one.
func NormalizeRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleScheduler:
		return RoleScheduler
	default:
		return RoleCaregiver
	}
}
