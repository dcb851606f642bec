package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches standard locations for
// worksphere.yaml/.yml. The search requires an explicit YAML extension so the
// binary itself (same base name, no extension) is never matched.
func InitViper(configFile string) {
	// A .env file in the working directory is loaded first so its values are
	// visible to AutomaticEnv. Absence is not an error.
	_ = godotenv.Load()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file in any standard location. Set name/type without
		// search paths so ReadInConfig returns ConfigFileNotFoundError,
		// which callers handle gracefully.
		viper.SetConfigName("worksphere")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: WORKSPHERE_API_BASE_URL
	viper.SetEnvPrefix("WORKSPHERE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a worksphere config file
// with an explicit YAML extension (.yaml or .yml).
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".worksphere"),
	}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "worksphere"))
		}
	} else {
		paths = append(paths, "/etc/worksphere")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths returns the first worksphere.yaml or .yml found in
// the given directories, or empty string.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "worksphere"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds nested config keys for environment variable
// support. Example: WORKSPHERE_SESSION_TIMEOUT overrides session.timeout.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("api.base_url")
	_ = viper.BindEnv("api.timeout")
	_ = viper.BindEnv("api.validation_cache_ttl")

	_ = viper.BindEnv("session.file_path")
	_ = viper.BindEnv("session.timeout")
	_ = viper.BindEnv("session.warning_window")
	_ = viper.BindEnv("session.restore_staleness")
	_ = viper.BindEnv("session.revalidate_interval")

	_ = viper.BindEnv("routing.policy_file")

	_ = viper.BindEnv("log.level")
	_ = viper.BindEnv("telemetry.enabled")

	_ = viper.BindEnv("audit.enabled")
	_ = viper.BindEnv("audit.path")
	_ = viper.BindEnv("audit.retention")
}

// LoadConfig reads the configuration file, applies environment overrides and
// defaults, validates, and returns the Config.
func LoadConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file found: continue with env vars and defaults only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed returns the path of the loaded configuration file, or empty
// when running from environment variables only.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
