// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// mcadmin-console.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.mcadmin-console/config.toml
//   - ~/.mcadmin-console/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/xyqyear/mcadmin-console/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete mcadmin-console configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Panel is the admin panel endpoint and credentials.
	Panel PanelConfig `toml:"panel" json:"panel"`

	// Console tunes session behavior.
	Console ConsoleConfig `toml:"console" json:"console"`

	// History configures persistent command history.
	History HistoryConfig `toml:"history" json:"history"`

	// UI configures rendering.
	UI UIConfig `toml:"ui" json:"ui"`
}

// PanelConfig contains the panel endpoint and credentials.
type PanelConfig struct {
	// URL is the panel base URL, e.g. "https://panel.example.com".
	URL string `toml:"url" json:"url"`
	// Username for token login. Ignored when Token is set.
	Username string `toml:"username" json:"username"`
	// Password for token login. Prefer MCADMIN_PASSWORD over storing it.
	Password string `toml:"password" json:"password"`
	// Token is a pre-issued access token; skips the login flow.
	Token string `toml:"token" json:"token"`
	// DefaultServer is attached when `connect` gets no argument.
	DefaultServer string `toml:"default_server" json:"default_server"`
}

// ConsoleConfig tunes session behavior.
type ConsoleConfig struct {
	// ErrorFramesFatal treats any server error frame as a connection
	// failure instead of rendering it inline. Off by default: servers use
	// error frames for per-command failures too.
	ErrorFramesFatal bool `toml:"error_frames_fatal" json:"error_frames_fatal"`
	// CommandRateLimit is the sustained outbound command rate per second.
	CommandRateLimit float64 `toml:"command_rate_limit" json:"command_rate_limit"`
	// CommandRateBurst is the outbound command burst allowance.
	CommandRateBurst int `toml:"command_rate_burst" json:"command_rate_burst"`
	// FilterRconDefault is the filter flag assumed before the server
	// reports one.
	FilterRconDefault bool `toml:"filter_rcon_default" json:"filter_rcon_default"`
}

// HistoryConfig configures persistent command history.
type HistoryConfig struct {
	// Enabled turns history persistence on.
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the sqlite database path (empty = default under the config
	// directory).
	Path string `toml:"path" json:"path"`
	// MaxEntries caps stored commands per server; oldest are pruned.
	MaxEntries int `toml:"max_entries" json:"max_entries"`
}

// UIConfig configures rendering.
type UIConfig struct {
	// Theme selects the color scheme: "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// DebugLog is an optional file that receives client diagnostics.
	DebugLog string `toml:"debug_log" json:"debug_log"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Version: "0.3.0",
		Panel: PanelConfig{
			URL: "http://localhost:8000",
		},
		Console: ConsoleConfig{
			CommandRateLimit: 5,
			CommandRateBurst: 10,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// =============================================================================
// FILE LOCATIONS
// =============================================================================

// ConfigDir returns the configuration directory (~/.mcadmin-console).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".mcadmin-console"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// HistoryPath returns the effective history database path.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files hold credentials, so anything wider than 0600 is tightened.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	return finishLoad(cfg)
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finishLoad(cfg)
}

func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Panel.URL == "" {
		cfg.Panel.URL = defaults.Panel.URL
	}
	if cfg.Console.CommandRateLimit == 0 {
		cfg.Console.CommandRateLimit = defaults.Console.CommandRateLimit
	}
	if cfg.Console.CommandRateBurst == 0 {
		cfg.Console.CommandRateBurst = defaults.Console.CommandRateBurst
	}
	if cfg.History.MaxEntries == 0 {
		cfg.History.MaxEntries = defaults.History.MaxEntries
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# mcadmin-console configuration file\n")
	b.WriteString("# Generated by mcadmin-console - edit with care\n\n")
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors aggregates every validation failure.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Panel.URL != "" {
		u, err := url.Parse(c.Panel.URL)
		if err != nil {
			errs = append(errs, ValidationError{"panel.url", "not a valid URL"})
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, ValidationError{"panel.url", "scheme must be http or https"})
		} else if u.Host == "" {
			errs = append(errs, ValidationError{"panel.url", "missing host"})
		}
	}

	if c.Console.CommandRateLimit < 0 {
		errs = append(errs, ValidationError{"console.command_rate_limit", "must not be negative"})
	}
	if c.Console.CommandRateBurst < 0 {
		errs = append(errs, ValidationError{"console.command_rate_burst", "must not be negative"})
	}
	if c.History.MaxEntries < 0 {
		errs = append(errs, ValidationError{"history.max_entries", "must not be negative"})
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		errs = append(errs, ValidationError{"ui.theme", "must be \"dark\" or \"light\""})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - MCADMIN_PANEL_URL: overrides panel.url
//   - MCADMIN_USERNAME: overrides panel.username
//   - MCADMIN_PASSWORD: overrides panel.password
//   - MCADMIN_TOKEN: overrides panel.token
//   - MCADMIN_SERVER: overrides panel.default_server
//   - MCADMIN_ERROR_FRAMES_FATAL: "1" or "true" enables the strict error
//     frame policy
//   - MCADMIN_HISTORY_PATH: overrides history.path
//   - MCADMIN_THEME: overrides ui.theme
//   - MCADMIN_DEBUG_LOG: overrides ui.debug_log
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("MCADMIN_PANEL_URL"); v != "" {
		c.Panel.URL = v
	}
	if v := os.Getenv("MCADMIN_USERNAME"); v != "" {
		c.Panel.Username = v
	}
	if v := os.Getenv("MCADMIN_PASSWORD"); v != "" {
		c.Panel.Password = v
	}
	if v := os.Getenv("MCADMIN_TOKEN"); v != "" {
		c.Panel.Token = v
	}
	if v := os.Getenv("MCADMIN_SERVER"); v != "" {
		c.Panel.DefaultServer = v
	}
	if v := os.Getenv("MCADMIN_ERROR_FRAMES_FATAL"); v != "" {
		c.Console.ErrorFramesFatal = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("MCADMIN_HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
	if v := os.Getenv("MCADMIN_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("MCADMIN_DEBUG_LOG"); v != "" {
		c.UI.DebugLog = v
	}
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
