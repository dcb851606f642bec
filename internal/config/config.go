// Package config provides configuration types and loading for the WorkSphere
// client.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the top-level configuration for the WorkSphere client.
type Config struct {
	// API configures the backend the client talks to.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Session configures the session lifecycle: inactivity timeout, warning
	// window, restoration staleness, and revalidation cadence.
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// Routing configures route protection.
	Routing RoutingConfig `yaml:"routing" mapstructure:"routing"`

	// Log configures logging output.
	Log LogConfig `yaml:"log" mapstructure:"log"`

	// Telemetry configures trace export.
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`

	// Audit configures the local session-event audit trail.
	Audit AuditConfig `yaml:"audit" mapstructure:"audit"`
}

// APIConfig configures the backend connection.
type APIConfig struct {
	// BaseURL is the backend base URL, e.g. "http://localhost:8080/api".
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// ValidationCacheTTL is how long a positive token-validation result is
	// reused before hitting the backend again.
	ValidationCacheTTL time.Duration `yaml:"validation_cache_ttl" mapstructure:"validation_cache_ttl"`
}

// SessionConfig configures session lifecycle timings and storage.
type SessionConfig struct {
	// FilePath is where the session snapshot is persisted.
	FilePath string `yaml:"file_path" mapstructure:"file_path"`

	// Timeout is the inactivity duration after which the session expires.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// WarningWindow is how long before expiry the warning fires. Must be
	// shorter than Timeout.
	WarningWindow time.Duration `yaml:"warning_window" mapstructure:"warning_window"`

	// RestoreStaleness is the maximum last-activity age for a persisted
	// session to be restored at startup. Zero means "same as timeout".
	RestoreStaleness time.Duration `yaml:"restore_staleness" mapstructure:"restore_staleness"`

	// RevalidateInterval is how often the token is re-checked against the
	// backend while authenticated.
	RevalidateInterval time.Duration `yaml:"revalidate_interval" mapstructure:"revalidate_interval"`
}

// RoutingConfig configures route protection.
type RoutingConfig struct {
	// PolicyFile is an optional YAML route policy. When empty, the built-in
	// per-role rules apply.
	PolicyFile string `yaml:"policy_file" mapstructure:"policy_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	Level string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// TelemetryConfig configures trace export.
type TelemetryConfig struct {
	// Enabled turns on span export to stderr.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// AuditConfig configures the local audit trail.
type AuditConfig struct {
	// Enabled turns on session-event recording.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file for audit events.
	Path string `yaml:"path" mapstructure:"path"`

	// Retention is how long events are kept; older rows are pruned at
	// startup. Zero disables pruning.
	Retention time.Duration `yaml:"retention" mapstructure:"retention"`
}

// SetDefaults applies default values for optional fields.
func (c *Config) SetDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8080/api"
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.API.ValidationCacheTTL <= 0 {
		c.API.ValidationCacheTTL = 30 * time.Second
	}
	if c.Session.Timeout <= 0 {
		c.Session.Timeout = 30 * time.Minute
	}
	if c.Session.WarningWindow <= 0 {
		c.Session.WarningWindow = 5 * time.Minute
	}
	if c.Session.RevalidateInterval <= 0 {
		c.Session.RevalidateInterval = 5 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	if c.Session.FilePath == "" {
		c.Session.FilePath = filepath.Join(home, ".worksphere", "session.json")
	}
	if c.Audit.Path == "" {
		c.Audit.Path = filepath.Join(home, ".worksphere", "audit.db")
	}
}

// Validate validates the configuration using struct tags and cross-field
// rules. Returns an error with actionable messages on failure.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if c.Session.WarningWindow >= c.Session.Timeout {
		return fmt.Errorf("session: warning_window (%s) must be shorter than timeout (%s)",
			c.Session.WarningWindow, c.Session.Timeout)
	}
	if c.Session.RestoreStaleness < 0 {
		return errors.New("session: restore_staleness must not be negative")
	}
	if c.Routing.PolicyFile != "" {
		if _, err := os.Stat(c.Routing.PolicyFile); err != nil {
			return fmt.Errorf("routing: policy_file %s: %w", c.Routing.PolicyFile, err)
		}
	}

	return nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly
// messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a single
// validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}
