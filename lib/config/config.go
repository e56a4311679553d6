// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for warden.
type Config struct {
	// Discord configures the connection to the Discord API.
	Discord DiscordConfig `yaml:"discord"`

	// Paths configures file locations.
	Paths PathsConfig `yaml:"paths"`

	// Dispatch configures gateway event handling.
	Dispatch DispatchConfig `yaml:"dispatch"`

	// Log configures logging.
	Log LogConfig `yaml:"log"`
}

// DiscordConfig configures the connection to the Discord API.
type DiscordConfig struct {
	// APIBaseURL is the REST API base, including the version prefix.
	// Overridable for tests against a local fake.
	APIBaseURL string `yaml:"api_base_url"`

	// GatewayURL is the websocket gateway URL.
	GatewayURL string `yaml:"gateway_url"`

	// ApplicationID is the bot application's snowflake, required for
	// slash-command registration.
	ApplicationID string `yaml:"application_id"`

	// TokenFile is the path to the file holding the bot token. The
	// token is read into a locked memory buffer at startup and never
	// appears in this struct.
	TokenFile string `yaml:"token_file"`
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// State is the directory holding runtime state. The reaction-role
	// binding snapshot lives here.
	State string `yaml:"state"`
}

// DispatchConfig configures gateway event handling.
type DispatchConfig struct {
	// MaxConcurrentEvents bounds the number of gateway events being
	// handled at once. Default: 16.
	MaxConcurrentEvents int `yaml:"max_concurrent_events"`

	// MaxReconnectBackoff caps the delay between gateway reconnect
	// attempts, as a Go duration string. Default: "30s".
	MaxReconnectBackoff string `yaml:"max_reconnect_backoff"`
}

// ReconnectBackoff returns the parsed reconnect backoff cap. Call
// Validate first; on an unparseable value this falls back to the
// default.
func (d DispatchConfig) ReconnectBackoff() time.Duration {
	parsed, err := time.ParseDuration(d.MaxReconnectBackoff)
	if err != nil || parsed <= 0 {
		return 30 * time.Second
	}
	return parsed
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the minimum slog level: debug, info, warn, or error.
	// Default: info.
	Level string `yaml:"level"`
}

// Default returns the default configuration. Defaults exist to give
// every field a sensible zero state — the config file is still
// required, because the token file path and application ID have no
// usable defaults.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Discord: DiscordConfig{
			APIBaseURL: "https://discord.com/api/v10",
			GatewayURL: "wss://gateway.discord.gg/?v=10&encoding=json",
		},
		Paths: PathsConfig{
			State: filepath.Join(homeDir, ".local", "state", "warden"),
		},
		Dispatch: DispatchConfig{
			MaxConcurrentEvents: 16,
			MaxReconnectBackoff: "30s",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the WARDEN_CONFIG environment
// variable. Fails if the variable is not set — there is no fallback.
func Load() (*Config, error) {
	configPath := os.Getenv("WARDEN_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("WARDEN_CONFIG environment variable not set; " +
			"set it to the path of your warden.yaml config file, or use --config")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging
// over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Paths.State = expandVars(c.Paths.State, vars)
	c.Discord.TokenFile = expandVars(c.Discord.TokenFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Discord.APIBaseURL == "" {
		errs = append(errs, fmt.Errorf("discord.api_base_url is required"))
	}
	if c.Discord.GatewayURL == "" {
		errs = append(errs, fmt.Errorf("discord.gateway_url is required"))
	}
	if c.Discord.ApplicationID == "" {
		errs = append(errs, fmt.Errorf("discord.application_id is required"))
	}
	if c.Discord.TokenFile == "" {
		errs = append(errs, fmt.Errorf("discord.token_file is required"))
	}
	if c.Paths.State == "" {
		errs = append(errs, fmt.Errorf("paths.state is required"))
	}
	if c.Dispatch.MaxConcurrentEvents <= 0 {
		errs = append(errs, fmt.Errorf("dispatch.max_concurrent_events must be positive"))
	}
	if backoff, err := time.ParseDuration(c.Dispatch.MaxReconnectBackoff); err != nil || backoff <= 0 {
		errs = append(errs, fmt.Errorf("dispatch.max_reconnect_backoff must be a positive duration"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn, or error"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SnapshotPath returns the path of the reaction-role binding snapshot.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.Paths.State, "bindings.snap")
}

// EnsurePaths creates the configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	if err := os.MkdirAll(c.Paths.State, 0700); err != nil {
		return fmt.Errorf("creating %s: %w", c.Paths.State, err)
	}
	return nil
}
