package auth

import "strings"

// Credentials are the login inputs supplied by the user.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the raw login payload from the backend. The backend has
// shipped several shapes over time: a current one (role, fullName) and legacy
// ones (userType, firstName+lastName, bare username). All fields are optional;
// UserFromLogin reconciles them into a canonical User.
type LoginResponse struct {
	Token      string `json:"token"`
	UserID     string `json:"userId"`
	EmployeeID string `json:"employeeId"`
	Email      string `json:"email"`

	Role     string `json:"role"`
	UserType string `json:"userType"` // legacy role field

	FullName  string `json:"fullName"`
	Name      string `json:"name"` // legacy display-name field
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"` // legacy fallback display name

	Message string `json:"message"`
}

// UserFromLogin builds the canonical User from a login response.
// Field precedence is fixed and deterministic:
//
//	role:     role, then userType (normalized either way)
//	fullName: fullName, then name, then firstName+lastName, then username
//	email:    payload email, then the email the user logged in with
//
// First/last name parts are taken from the payload when present, otherwise
// split off the resolved full name.
func UserFromLogin(resp *LoginResponse, credentialEmail string) User {
	role := resp.Role
	if role == "" {
		role = resp.UserType
	}

	fullName := resp.FullName
	if fullName == "" {
		fullName = resp.Name
	}
	if fullName == "" {
		fullName = strings.TrimSpace(resp.FirstName + " " + resp.LastName)
	}
	if fullName == "" {
		fullName = resp.Username
	}

	first, last := resp.FirstName, resp.LastName
	if first == "" {
		first, last = splitName(fullName)
	}

	email := resp.Email
	if email == "" {
		email = credentialEmail
	}

	id := resp.UserID
	if id == "" {
		id = "0"
	}

	return User{
		ID:         id,
		FullName:   fullName,
		FirstName:  first,
		LastName:   last,
		Email:      email,
		Role:       NormalizeRole(role),
		EmployeeID: resp.EmployeeID,
	}
}

// splitName splits a display name into first and last parts.
// Everything after the first space belongs to the last name.
func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
