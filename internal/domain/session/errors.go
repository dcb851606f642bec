package session

import "errors"

// Canonical error kinds for the session core. The network gateway's typed
// errors match these via errors.Is, so the controller can classify failures
// without knowing the transport.
var (
	// ErrInvalidCredentials marks a login rejected by the backend. Recovered
	// locally: the session state is unchanged.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized marks a definite credential rejection (HTTP 401):
	// the current session is invalid and must be torn down.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks a permission failure (HTTP 403) for an authenticated
	// session. It is never a session-validity signal.
	ErrForbidden = errors.New("forbidden")

	// ErrServerUnreachable marks a transport failure with no response. It must
	// never be treated as an authentication failure.
	ErrServerUnreachable = errors.New("server unreachable")

	// ErrNoSession is returned by operations that require an authenticated
	// session when none exists.
	ErrNoSession = errors.New("no active session")
)
