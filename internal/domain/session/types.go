// Package session owns the client-side authentication lifecycle: the session
// snapshot, the inactivity timer, and the controller that mediates between
// persisted storage, the network gateway, and the UI.
package session

import (
	"context"
	"time"

	"github.com/morepradnya1503/PGDAC-Project/internal/domain/auth"
)

// Snapshot is the persisted session: the bearer token, the user record, and
// the timestamp of last activity. Token and user are always set together and
// cleared together; a snapshot missing either is treated as no session.
type Snapshot struct {
	Token        string
	User         *auth.User
	LastActivity time.Time
}

// Complete reports whether the snapshot holds both a token and a user.
func (s *Snapshot) Complete() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// Store is the persisted-session storage the controller and gateway share.
// Load returns nil for an absent, incomplete, or malformed session and never
// fails on malformed data (the store clears it defensively instead).
type Store interface {
	Save(token string, user *auth.User) error
	Load() (*Snapshot, error)
	Clear() error
	Touch() error
}

// Gateway is the network surface the controller drives. OnUnauthorized
// registers a process-wide listener for definite credential rejections (the
// gateway has already cleared the store by the time it fires) and returns a
// function that removes the listener.
type Gateway interface {
	Login(ctx context.Context, creds auth.Credentials) (*auth.LoginResponse, error)
	CurrentUser(ctx context.Context) (*auth.User, error)
	OnUnauthorized(fn func(message string)) func()
}

// Auditor records session lifecycle events. Implementations are best-effort:
// the controller logs and continues when recording fails.
type Auditor interface {
	Record(ctx context.Context, event, userEmail, detail string) error
}
