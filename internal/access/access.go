// Package access holds the role based visibility rules shared by attendance,
// leave and payroll.
package access

import (
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

var Roles = []Role{RoleEmployee, RoleHR, RoleAdmin}

// ParseRole accepts any casing, e.g. "HR" or "Admin".
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleEmployee, RoleHR, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

// CanSeeAll reports whether the role may read other employees' records.
func CanSeeAll(r Role) bool {
	return r == RoleAdmin || r == RoleHR
}

// CanActOnOthers reports whether the role may mutate records it does not own
// and run privileged operations.
func CanActOnOthers(r Role) bool {
	return r == RoleAdmin || r == RoleHR
}

// Caller is the identity supplied by the identity provider for one request.
type Caller struct {
	EmployeeID uuid.UUID
	Role       Role
}

// System is the caller used by background consumers.
func System() Caller {
	return Caller{Role: RoleAdmin}
}

func (c Caller) Privileged() bool {
	return CanActOnOthers(c.Role)
}

// ScopeEmployee returns the employee filter a list query must use. Privileged
// callers get what they asked for (nil means everyone); anyone else is pinned
// to their own id regardless of the request.
func (c Caller) ScopeEmployee(requested *uuid.UUID) *uuid.UUID {
	if CanSeeAll(c.Role) {
		return requested
	}
	own := c.EmployeeID
	return &own
}

// CanView reports whether the caller may read a record owned by owner.
func (c Caller) CanView(owner uuid.UUID) bool {
	return CanSeeAll(c.Role) || c.EmployeeID == owner
}
