package rbac

import "go-workforce/internal/access"

const (
	ResourceAttendance = "attendance"
	ResourceLeave      = "leave"
	ResourcePayroll    = "payroll"

	ActionRead     = "read"
	ActionCheckIn  = "check_in"
	ActionCheckOut = "check_out"
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionApprove  = "approve"
	ActionBackfill = "backfill"
	ActionExport   = "export"
)

type Permission struct {
	Role     access.Role
	Resource string
	Action   string
}

// Inheritance lists child, parent pairs.
var Inheritance = [][2]access.Role{
	{access.RoleHR, access.RoleEmployee},
	{access.RoleAdmin, access.RoleHR},
}

// DefaultPolicies is the route level permission table. Record level
// visibility is still decided by the access package inside each service.
func DefaultPolicies() []Permission {
	return []Permission{
		{access.RoleEmployee, ResourceAttendance, ActionCheckIn},
		{access.RoleEmployee, ResourceAttendance, ActionCheckOut},
		{access.RoleEmployee, ResourceAttendance, ActionRead},
		{access.RoleEmployee, ResourceLeave, ActionCreate},
		{access.RoleEmployee, ResourceLeave, ActionRead},
		{access.RoleEmployee, ResourcePayroll, ActionRead},

		{access.RoleHR, ResourceAttendance, ActionUpdate},
		{access.RoleHR, ResourceLeave, ActionApprove},
		{access.RoleHR, ResourceLeave, ActionBackfill},
		{access.RoleHR, ResourcePayroll, ActionCreate},
		{access.RoleHR, ResourcePayroll, ActionUpdate},
		{access.RoleHR, ResourcePayroll, ActionExport},
	}
}
