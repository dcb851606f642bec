package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

func TestSetDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.SetDefaults()

	if cfg.API.BaseURL != "http://localhost:8080/api" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("api timeout = %s", cfg.API.Timeout)
	}
	if cfg.Session.Timeout != 30*time.Minute {
		t.Errorf("session timeout = %s", cfg.Session.Timeout)
	}
	if cfg.Session.WarningWindow != 5*time.Minute {
		t.Errorf("warning window = %s", cfg.Session.WarningWindow)
	}
	if cfg.Session.RevalidateInterval != 5*time.Minute {
		t.Errorf("revalidate interval = %s", cfg.Session.RevalidateInterval)
	}
	if cfg.Session.RestoreStaleness != 0 {
		t.Errorf("restore staleness should stay zero (same-as-timeout), got %s", cfg.Session.RestoreStaleness)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if !strings.HasSuffix(cfg.Session.FilePath, filepath.Join(".worksphere", "session.json")) {
		t.Errorf("session file path = %q", cfg.Session.FilePath)
	}
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.API.BaseURL = "https://hr.example.com/api"
	cfg.Session.Timeout = time.Hour
	cfg.SetDefaults()

	if cfg.API.BaseURL != "https://hr.example.com/api" {
		t.Errorf("base_url overridden: %q", cfg.API.BaseURL)
	}
	if cfg.Session.Timeout != time.Hour {
		t.Errorf("session timeout overridden: %s", cfg.Session.Timeout)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: "required",
		},
		{
			name:    "malformed base url",
			mutate:  func(c *Config) { c.API.BaseURL = "not a url" },
			wantErr: "valid URL",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "one of",
		},
		{
			name: "warning window not shorter than timeout",
			mutate: func(c *Config) {
				c.Session.Timeout = 5 * time.Minute
				c.Session.WarningWindow = 5 * time.Minute
			},
			wantErr: "warning_window",
		},
		{
			name:    "negative restore staleness",
			mutate:  func(c *Config) { c.Session.RestoreStaleness = -time.Minute },
			wantErr: "restore_staleness",
		},
		{
			name:    "missing policy file",
			mutate:  func(c *Config) { c.Routing.PolicyFile = "/does/not/exist.yaml" },
			wantErr: "policy_file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAcceptsExistingPolicyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(path, []byte("rules: []\n"), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}

	cfg := validConfig(t)
	cfg.Routing.PolicyFile = path
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestFindConfigFileInPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if got := findConfigFileInPaths([]string{dir}); got != "" {
		t.Fatalf("found %q in empty dir", got)
	}

	want := filepath.Join(dir, "worksphere.yml")
	if err := os.WriteFile(want, []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if got := findConfigFileInPaths([]string{dir}); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	// .yaml wins over .yml when both exist.
	yaml := filepath.Join(dir, "worksphere.yaml")
	if err := os.WriteFile(yaml, []byte(""), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if got := findConfigFileInPaths([]string{dir}); got != yaml {
		t.Fatalf("got %q, want %q", got, yaml)
	}
}
