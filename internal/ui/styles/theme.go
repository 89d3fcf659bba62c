// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the console TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette colors shared by both themes.
var (
	Green  = lipgloss.Color("35")
	Yellow = lipgloss.Color("178")
	Red    = lipgloss.Color("160")
	Blue   = lipgloss.Color("32")
	Gray   = lipgloss.Color("243")
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// TRANSCRIPT STYLES
	// ==========================================================================

	Log     lipgloss.Style
	Banner  lipgloss.Style
	Command lipgloss.Style
	Result  lipgloss.Style
	Info    lipgloss.Style
	Error   lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputPrompt   lipgloss.Style
	InputText     lipgloss.Style
	InputDisabled lipgloss.Style
	Cursor        lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar         lipgloss.Style
	StateConnected    lipgloss.Style
	StateConnecting   lipgloss.Style
	StateRetrying     lipgloss.Style
	StateError        lipgloss.Style
	StateDisconnected lipgloss.Style
	FilterOn          lipgloss.Style
	FilterOff         lipgloss.Style
	ShortcutKey       lipgloss.Style
	ShortcutDesc      lipgloss.Style

	// ==========================================================================
	// SCROLL INDICATOR STYLES
	// ==========================================================================

	ScrollIndicator lipgloss.Style
}

// NewTheme creates a theme for the given name ("dark" or "light").
func NewTheme(name string) *Theme {
	t := &Theme{
		IsDark:       name != "light",
		ColorProfile: termenv.ColorProfile(),
	}

	fg := lipgloss.Color("252")
	dim := Gray
	if !t.IsDark {
		fg = lipgloss.Color("235")
		dim = lipgloss.Color("245")
	}

	t.Log = lipgloss.NewStyle().Foreground(fg)
	t.Banner = lipgloss.NewStyle().Foreground(dim).Italic(true)
	t.Command = lipgloss.NewStyle().Foreground(Blue).Bold(true)
	t.Result = lipgloss.NewStyle().Foreground(fg)
	t.Info = lipgloss.NewStyle().Foreground(Blue)
	t.Error = lipgloss.NewStyle().Foreground(Red)

	t.InputPrompt = lipgloss.NewStyle().Foreground(Green).Bold(true)
	t.InputText = lipgloss.NewStyle().Foreground(fg)
	t.InputDisabled = lipgloss.NewStyle().Foreground(dim)
	t.Cursor = lipgloss.NewStyle().Reverse(true)

	t.StatusBar = lipgloss.NewStyle().Foreground(fg).Background(lipgloss.Color("236"))
	if !t.IsDark {
		t.StatusBar = lipgloss.NewStyle().Foreground(fg).Background(lipgloss.Color("253"))
	}
	t.StateConnected = lipgloss.NewStyle().Foreground(Green).Bold(true)
	t.StateConnecting = lipgloss.NewStyle().Foreground(Yellow)
	t.StateRetrying = lipgloss.NewStyle().Foreground(Yellow).Bold(true)
	t.StateError = lipgloss.NewStyle().Foreground(Red).Bold(true)
	t.StateDisconnected = lipgloss.NewStyle().Foreground(dim)
	t.FilterOn = lipgloss.NewStyle().Foreground(Green)
	t.FilterOff = lipgloss.NewStyle().Foreground(dim)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Blue).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(dim)

	t.ScrollIndicator = lipgloss.NewStyle().Foreground(dim)

	return t
}
