package cmd

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/morepradnya1503/PGDAC-Project/internal/config"
	"github.com/morepradnya1503/PGDAC-Project/internal/domain/auth"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

type staticSession struct {
	user *auth.User
}

func (s *staticSession) Loading() bool         { return false }
func (s *staticSession) IsAuthenticated() bool { return s.user != nil }
func (s *staticSession) CurrentUser() (auth.User, bool) {
	if s.user == nil {
		return auth.User{}, false
	}
	return *s.user, true
}

func TestBuildGuard(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := &staticSession{}

	t.Run("defaults when no policy file", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{}
		cfg.SetDefaults()
		if _, err := buildGuard(cfg, sess, logger); err != nil {
			t.Fatalf("buildGuard: %v", err)
		}
	})

	t.Run("valid policy file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "routes.yaml")
		policy := "rules:\n  - prefix: /admin\n    roles: [ADMIN]\n    condition: 'email != \"\"'\n"
		if err := os.WriteFile(path, []byte(policy), 0o600); err != nil {
			t.Fatalf("write policy: %v", err)
		}
		cfg := &config.Config{}
		cfg.SetDefaults()
		cfg.Routing.PolicyFile = path
		if _, err := buildGuard(cfg, sess, logger); err != nil {
			t.Fatalf("buildGuard: %v", err)
		}
	})

	t.Run("broken condition fails at startup", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "routes.yaml")
		policy := "rules:\n  - prefix: /admin\n    roles: [ADMIN]\n    condition: 'email =='\n"
		if err := os.WriteFile(path, []byte(policy), 0o600); err != nil {
			t.Fatalf("write policy: %v", err)
		}
		cfg := &config.Config{}
		cfg.SetDefaults()
		cfg.Routing.PolicyFile = path
		if _, err := buildGuard(cfg, sess, logger); err == nil {
			t.Fatal("expected a compile error from the broken condition")
		}
	})
}
