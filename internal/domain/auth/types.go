// Package auth contains the domain types for authenticated users and roles.
package auth

import "strings"

// Role represents a user role for authorization purposes.
type Role string

const (
	// RoleAdmin has full access to all operations.
	RoleAdmin Role = "ADMIN"
	// RoleHR manages employees, projects, and leave approvals.
	RoleHR Role = "HR"
	// RoleManager oversees a team and its projects.
	RoleManager Role = "MANAGER"
	// RoleEmployee has access to their own records only.
	RoleEmployee Role = "EMPLOYEE"
)

// legacyPrefix is the marker some backend responses prepend to role values
// (e.g. "ROLE_MANAGER"). Roles are normalized at the construction boundary so
// the rest of the code compares plain role values only.
const legacyPrefix = "ROLE_"

// NormalizeRole canonicalizes a raw role string from a backend response:
// the legacy "ROLE_" marker is stripped and the value is upper-cased.
func NormalizeRole(raw string) Role {
	r := strings.ToUpper(strings.TrimSpace(raw))
	r = strings.TrimPrefix(r, legacyPrefix)
	return Role(r)
}

// IsValid returns true if the role is a known valid role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleManager, RoleEmployee:
		return true
	default:
		return false
	}
}

// Equals reports whether the role matches another role value, tolerating the
// legacy marker on either side.
func (r Role) Equals(other Role) bool {
	return NormalizeRole(string(r)) == NormalizeRole(string(other))
}

// User is the canonical authenticated-user record derived from a login
// response. All fields are plain values; Role is always normalized.
type User struct {
	// ID is the backend's user identifier.
	ID string `json:"id"`
	// FullName is the display name ("Alice B").
	FullName string `json:"fullName"`
	// FirstName and LastName are split name parts when the backend provides
	// them, otherwise derived from FullName.
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	// Email is the login email.
	Email string `json:"email"`
	// Role governs which routes and resources are permitted.
	Role Role `json:"role"`
	// EmployeeID is the HR-assigned identifier (e.g. "EMP003"), if any.
	EmployeeID string `json:"employeeId,omitempty"`
}

// HasRole returns true if the user's role matches the given role,
// tolerating the legacy marker on either side.
func (u *User) HasRole(role Role) bool {
	return u.Role.Equals(role)
}

// HasAnyRole returns true if the user's role matches any of the given roles.
func (u *User) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}
