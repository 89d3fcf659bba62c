// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadFromPathTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := []byte(`
version = "0.3.0"

[panel]
url = "https://panel.example.com"
username = "admin"
default_server = "survival"

[console]
error_frames_fatal = true
command_rate_limit = 2.5

[ui]
theme = "light"
`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Panel.URL != "https://panel.example.com" {
		t.Errorf("panel.url = %q", cfg.Panel.URL)
	}
	if cfg.Panel.DefaultServer != "survival" {
		t.Errorf("panel.default_server = %q", cfg.Panel.DefaultServer)
	}
	if !cfg.Console.ErrorFramesFatal {
		t.Error("console.error_frames_fatal not loaded")
	}
	if cfg.Console.CommandRateLimit != 2.5 {
		t.Errorf("console.command_rate_limit = %v", cfg.Console.CommandRateLimit)
	}
	if cfg.Console.CommandRateBurst != 10 {
		t.Errorf("missing burst should fill default, got %d", cfg.Console.CommandRateBurst)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("ui.theme = %q", cfg.UI.Theme)
	}
}

func TestLoadFromPathJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := []byte(`{"panel":{"url":"http://localhost:9000","token":"tok"}}`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Panel.URL != "http://localhost:9000" {
		t.Errorf("panel.url = %q", cfg.Panel.URL)
	}
	if cfg.Panel.Token != "tok" {
		t.Errorf("panel.token = %q", cfg.Panel.Token)
	}
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Panel.URL = "https://panel.example.com"
	cfg.Panel.DefaultServer = "creative"
	cfg.Console.ErrorFramesFatal = true
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file permissions = %o, want 0600", info.Mode().Perm())
	}

	got, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Panel.DefaultServer != "creative" || !got.Console.ErrorFramesFatal {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad scheme", func(c *Config) { c.Panel.URL = "ftp://panel" }},
		{"no host", func(c *Config) { c.Panel.URL = "http://" }},
		{"negative rate", func(c *Config) { c.Console.CommandRateLimit = -1 }},
		{"negative history cap", func(c *Config) { c.History.MaxEntries = -5 }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MCADMIN_PANEL_URL", "https://env.example.com")
	t.Setenv("MCADMIN_TOKEN", "env-token")
	t.Setenv("MCADMIN_ERROR_FRAMES_FATAL", "true")
	t.Setenv("MCADMIN_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Panel.URL != "https://env.example.com" {
		t.Errorf("panel.url = %q", cfg.Panel.URL)
	}
	if cfg.Panel.Token != "env-token" {
		t.Errorf("panel.token = %q", cfg.Panel.Token)
	}
	if !cfg.Console.ErrorFramesFatal {
		t.Error("error_frames_fatal override not applied")
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("ui.theme = %q", cfg.UI.Theme)
	}
}

func TestHistoryPathDefaultsUnderConfigDir(t *testing.T) {
	cfg := Default()
	path, err := cfg.HistoryPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "history.db" {
		t.Errorf("unexpected default history path %q", path)
	}

	cfg.History.Path = "/tmp/custom.db"
	path, err = cfg.HistoryPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/tmp/custom.db" {
		t.Errorf("explicit path not honored: %q", path)
	}
}

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and
// ReloadGlobal() can be safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}
