// Package state persists the client session across process restarts.
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/morepradnya1503/PGDAC-Project/internal/domain/auth"
	"github.com/morepradnya1503/PGDAC-Project/internal/domain/session"
)

// record is the on-disk layout: the bearer token, the serialized user record,
// and the millisecond epoch timestamp of last activity. All three are written
// together on login and removed together on logout.
type record struct {
	Token          string     `json:"token"`
	User           *auth.User `json:"user"`
	LastActivityMS int64      `json:"lastActivity"`
}

func (r *record) snapshot() *session.Snapshot {
	return &session.Snapshot{
		Token:        r.Token,
		User:         r.User,
		LastActivity: time.UnixMilli(r.LastActivityMS),
	}
}

// SessionStore manages reading and writing the session file. It implements
// session.Store with atomic writes (write-tmp-then-rename), file locking
// (flock for cross-process, mutex for in-process), and 0600 permissions since
// the file holds a live bearer token.
type SessionStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionStore creates a SessionStore for the given file path.
func NewSessionStore(path string, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// Save writes the token, the user record, and a fresh last-activity timestamp
// together. This is the final step of a successful login, so a crash before
// Save leaves no partial session behind.
func (s *SessionStore) Save(token string, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(&record{
		Token:          token,
		User:           user,
		LastActivityMS: s.now().UnixMilli(),
	})
}

// Load reads the persisted session. A missing file, an incomplete record, or
// malformed JSON all return nil with no error; malformed data is additionally
// cleared from disk so it cannot resurface on the next start.
func (s *SessionStore) Load() (*session.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.loadLocked()
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.snapshot(), nil
}

func (s *SessionStore) loadLocked() (*record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	// Warn if the file is readable by group/other; it holds a bearer token.
	// Skip on Windows where Unix permission bits are not supported.
	if runtime.GOOS != "windows" {
		if info, statErr := os.Stat(s.path); statErr == nil {
			mode := info.Mode().Perm()
			if mode&0077 != 0 {
				s.logger.Warn("session file has too-open permissions, should be 0600",
					"path", s.path, "current_mode", fmt.Sprintf("%04o", mode))
			}
		}
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		// Malformed persisted state is treated as "no session", never as an
		// error surfaced to the user.
		s.logger.Warn("session file is malformed, clearing it", "path", s.path, "error", err)
		if clearErr := s.clearLocked(); clearErr != nil {
			s.logger.Warn("failed to clear malformed session file", "error", clearErr)
		}
		return nil, nil
	}

	if rec.Token == "" || rec.User == nil {
		// Token without user (or the reverse) violates the session invariant;
		// discard the remnant.
		if rec.Token != "" || rec.User != nil {
			s.logger.Warn("session file is incomplete, clearing it", "path", s.path)
			if clearErr := s.clearLocked(); clearErr != nil {
				s.logger.Warn("failed to clear incomplete session file", "error", clearErr)
			}
		}
		return nil, nil
	}

	return &rec, nil
}

// Clear removes the persisted session. Clearing an already-absent session is
// not an error.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *SessionStore) clearLocked() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Touch advances the persisted last-activity timestamp to now, leaving token
// and user untouched. The timestamp never moves backwards. Touching an absent
// session is a no-op.
func (s *SessionStore) Touch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.loadLocked()
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}

	if ms := s.now().UnixMilli(); ms > rec.LastActivityMS {
		rec.LastActivityMS = ms
	}
	return s.writeLocked(rec)
}

// Exists returns true if a session file exists on disk.
func (s *SessionStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Path returns the configured file path.
func (s *SessionStore) Path() string {
	return s.path
}

// writeLocked persists the record to disk.
//
// The write sequence is:
//  1. Ensure the parent directory exists (0700)
//  2. Acquire flock on path+".lock"
//  3. Marshal the record as indented JSON
//  4. Write to path+".tmp" with 0600 permissions
//  5. Fsync the temp file
//  6. Rename path+".tmp" -> path
//  7. Release flock
func (s *SessionStore) writeLocked(rec *record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	lockPath := s.path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer func() { _ = lockFile.Close() }()

	if err := flockLock(lockFile.Fd()); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer flockUnlock(lockFile.Fd()) //nolint:errcheck

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	data = append(data, '\n')

	if err := s.writeAtomic(data); err != nil {
		return err
	}

	// Explicitly ensure 0600 permissions after rename as a safety net.
	if err := os.Chmod(s.path, 0600); err != nil {
		s.logger.Warn("failed to set permissions on session file", "error", err)
	}

	s.logger.Debug("session saved", "path", s.path)
	return nil
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it
// over the target path. On any error the temp file is cleaned up.
func (s *SessionStore) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp to session: %w", err)
	}
	return nil
}
