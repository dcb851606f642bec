// Package audit persists session lifecycle events to a local SQLite database.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS session_events (
	id         TEXT PRIMARY KEY,
	event      TEXT NOT NULL,
	user_email TEXT NOT NULL DEFAULT '',
	detail     TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_events_created_at
	ON session_events (created_at DESC);
`

// Event is one recorded session lifecycle event.
type Event struct {
	ID        string
	Event     string
	UserEmail string
	Detail    string
	CreatedAt time.Time
}

// SQLiteStore records session lifecycle events. It implements
// session.Auditor. Recording is best-effort from the caller's point of view,
// but the store itself reports failures honestly.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the audit database at path.
func Open(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize audit schema: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Record inserts one event row.
func (s *SQLiteStore) Record(ctx context.Context, event, userEmail, detail string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_events (id, event, user_email, detail, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), event, userEmail, detail, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event, user_email, detail, created_at
		 FROM session_events
		 ORDER BY created_at DESC, id
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var createdMS int64
		if err := rows.Scan(&ev.ID, &ev.Event, &ev.UserEmail, &ev.Detail, &createdMS); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		ev.CreatedAt = time.UnixMilli(createdMS)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// Prune deletes events older than the retention window and returns how many
// rows were removed.
func (s *SQLiteStore) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UnixMilli()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM session_events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune audit events: %w", err)
	}
	if n > 0 {
		s.logger.Debug("pruned audit events", "removed", n)
	}
	return n, nil
}
