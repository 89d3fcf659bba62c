// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// mcadmin-console.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - PanelConfig: Panel endpoint and credentials
//   - ConsoleConfig: Session behavior tuning
//   - HistoryConfig: Persistent command history settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (MCADMIN_*)
//   - ~/.mcadmin-console/config.toml
//   - ~/.mcadmin-console/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	panelURL := cfg.Panel.URL
//	fatal := cfg.Console.ErrorFramesFatal
package config
