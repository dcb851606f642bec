package api

import (
	"fmt"

	"github.com/morepradnya1503/PGDAC-Project/internal/domain/session"
)

// Sentinel errors for use with errors.Is(). These are the session domain's
// canonical kinds, re-exported so gateway callers need only this package.
var (
	// ErrInvalidCredentials is returned when the backend rejects a login.
	ErrInvalidCredentials = session.ErrInvalidCredentials

	// ErrUnauthorized is returned when the backend reports the session's
	// credential as missing, invalid, or expired (HTTP 401).
	ErrUnauthorized = session.ErrUnauthorized

	// ErrForbidden is returned when the session is authenticated but lacks
	// permission for the requested resource (HTTP 403). It is not a
	// session-validity signal.
	ErrForbidden = session.ErrForbidden

	// ErrServerUnreachable is returned when no response was received from the
	// backend. It must never be treated as an authentication failure.
	ErrServerUnreachable = session.ErrServerUnreachable
)

// APIError is the base error for non-2xx responses that carry no dedicated
// type. Status is the HTTP status code; Message is the server-provided
// message, if any.
type APIError struct {
	Status  int
	Message string
}

// Error returns the error message.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: server returned %d", e.Status)
}

// InvalidCredentialsError is returned by Login when the backend rejects the
// supplied credentials.
type InvalidCredentialsError struct {
	// Message is the server-provided rejection message, if any.
	Message string
}

// Error returns a human-readable description of the rejection.
func (e *InvalidCredentialsError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid credentials: %s", e.Message)
	}
	return "invalid credentials"
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrInvalidCredentials).
func (e *InvalidCredentialsError) Is(target error) bool {
	return target == ErrInvalidCredentials
}

// UnauthorizedError is returned on HTTP 401. By the time the caller sees it,
// the persisted session has already been cleared and the unauthorized event
// broadcast.
type UnauthorizedError struct {
	// Message is the server-provided message, if any.
	Message string
}

// Error returns a human-readable description of the auth failure.
func (e *UnauthorizedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unauthorized: %s", e.Message)
	}
	return "unauthorized"
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrUnauthorized).
func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

// ForbiddenError is returned on HTTP 403 and passed through to the caller
// unchanged; the session remains intact.
type ForbiddenError struct {
	// Message is the server-provided message, if any.
	Message string
}

// Error returns a human-readable description of the permission failure.
func (e *ForbiddenError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("forbidden: %s", e.Message)
	}
	return "forbidden"
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrForbidden).
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// ServerUnreachableError is returned when the backend cannot be contacted.
type ServerUnreachableError struct {
	// Cause is the underlying transport error.
	Cause error
}

// Error returns a human-readable description of the transport failure.
func (e *ServerUnreachableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("server unreachable: %v", e.Cause)
	}
	return "server unreachable"
}

// Unwrap returns the underlying error cause.
func (e *ServerUnreachableError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrServerUnreachable).
func (e *ServerUnreachableError) Is(target error) bool {
	return target == ErrServerUnreachable
}
