// Package config handles the XDG configuration directory, file paths and
// environment settings.
package config

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the application directory name.
	AppName = "buildboard"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// SchemeFile is the default task sheet column scheme filename.
	SchemeFile = "scheme.yaml"

	// MetricsSchemeFile is the default metrics sheet column scheme filename.
	MetricsSchemeFile = "metrics_scheme.yaml"

	// RosterFile is the team roster filename.
	RosterFile = "roster.yaml"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Env holds settings read from BUILDBOARD_* variables.
	Env Env
}

// New creates a new Config with the default or specified config directory and
// loads the environment.
// If configDir is empty, uses XDG_CONFIG_HOME/buildboard or $HOME/.config/buildboard.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	return &Config{Dir: dir, Env: *env}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// SchemePath returns the task scheme file, BUILDBOARD_SCHEME_FILE if set.
func (c *Config) SchemePath() string {
	return c.fileOr(c.Env.SchemeFile, SchemeFile)
}

// MetricsSchemePath returns the metrics scheme file,
// BUILDBOARD_METRICS_SCHEME_FILE if set.
func (c *Config) MetricsSchemePath() string {
	return c.fileOr(c.Env.MetricsSchemeFile, MetricsSchemeFile)
}

// RosterPath returns the path to the team roster.
func (c *Config) RosterPath() string {
	return filepath.Join(c.Dir, RosterFile)
}

func (c *Config) fileOr(override, name string) string {
	if override != "" {
		return override
	}
	return filepath.Join(c.Dir, name)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
