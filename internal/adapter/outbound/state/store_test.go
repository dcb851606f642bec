package state

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/morepradnya1503/PGDAC-Project/internal/domain/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T) *SessionStore {
	t.Helper()
	return NewSessionStore(filepath.Join(t.TempDir(), "session.json"), testLogger())
}

func testUser() *auth.User {
	return &auth.User{
		ID:       "7",
		FullName: "Alice B",
		Email:    "a@b.com",
		Role:     auth.RoleManager,
	}
}

func TestSessionStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	user := testUser()

	before := time.Now().UnixMilli()
	if err := store.Save("tok1", user); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	rec, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if rec == nil {
		t.Fatal("Load() = nil, want record")
	}
	if rec.Token != "tok1" {
		t.Errorf("Token = %q, want %q", rec.Token, "tok1")
	}
	if rec.User == nil || *rec.User != *user {
		t.Errorf("User = %+v, want %+v", rec.User, user)
	}
	if rec.LastActivity.UnixMilli() < before {
		t.Errorf("LastActivity = %d, want >= %d", rec.LastActivity.UnixMilli(), before)
	}
}

func TestSessionStore_LoadEmpty(t *testing.T) {
	t.Parallel()

	store := testStore(t)

	rec, err := store.Load()
	if err != nil {
		t.Fatalf("Load() on empty store error: %v", err)
	}
	if rec != nil {
		t.Errorf("Load() on empty store = %+v, want nil", rec)
	}
}

func TestSessionStore_LoadMalformedClearsFile(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	rec, err := store.Load()
	if err != nil {
		t.Fatalf("Load() with malformed file error: %v", err)
	}
	if rec != nil {
		t.Errorf("Load() with malformed file = %+v, want nil", rec)
	}
	if store.Exists() {
		t.Error("malformed session file was not cleared")
	}
}

func TestSessionStore_LoadIncompleteRecord(t *testing.T) {
	t.Parallel()

	// A token without a user violates the set-together invariant and must be
	// treated as no session.
	store := testStore(t)
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.Path(), []byte(`{"token":"tok1"}`), 0600); err != nil {
		t.Fatal(err)
	}

	rec, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if rec != nil {
		t.Errorf("Load() with incomplete record = %+v, want nil", rec)
	}
	if store.Exists() {
		t.Error("incomplete session file was not cleared")
	}
}

func TestSessionStore_Clear(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	if err := store.Save("tok1", testUser()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if store.Exists() {
		t.Error("session file still exists after Clear()")
	}

	// Clearing again must not error.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() error: %v", err)
	}
}

func TestSessionStore_Touch(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Save("tok1", testUser()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	if err := store.Touch(); err != nil {
		t.Fatalf("Touch() error: %v", err)
	}

	rec, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := now.Add(2 * time.Minute).UnixMilli()
	if rec.LastActivity.UnixMilli() != want {
		t.Errorf("LastActivity = %d, want %d", rec.LastActivity.UnixMilli(), want)
	}

	// The timestamp never moves backwards, even if the clock does.
	store.now = func() time.Time { return now.Add(-time.Hour) }
	if err := store.Touch(); err != nil {
		t.Fatalf("Touch() error: %v", err)
	}
	rec, _ = store.Load()
	if rec.LastActivity.UnixMilli() != want {
		t.Errorf("LastActivity after backwards clock = %d, want %d", rec.LastActivity.UnixMilli(), want)
	}
}

func TestSessionStore_TouchAbsent(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	if err := store.Touch(); err != nil {
		t.Errorf("Touch() on absent session error: %v", err)
	}
	if store.Exists() {
		t.Error("Touch() on absent session created a file")
	}
}

func TestSessionStore_SaveReplacesPriorSession(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	if err := store.Save("tok1", testUser()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	second := &auth.User{ID: "9", FullName: "Bob C", Email: "bob@b.com", Role: auth.RoleHR}
	if err := store.Save("tok2", second); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	rec, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if rec.Token != "tok2" || rec.User.Email != "bob@b.com" {
		t.Errorf("Load() = %+v, want fully replaced session", rec)
	}
}
