// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/xyqyear/mcadmin-console/internal/console"
	"github.com/xyqyear/mcadmin-console/internal/ui/styles"
	"github.com/xyqyear/mcadmin-console/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the one-line session summary under the transcript:
// server name, connection state, retry progress, filter flag, scroll
// position and shortcut hints.
type StatusBar struct {
	theme *styles.Theme
	width int
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{theme: theme, width: 80}
}

// SetWidth updates the render width.
func (sb *StatusBar) SetWidth(width int) { sb.width = width }

// Render builds the status line for the given session snapshot.
func (sb *StatusBar) Render(serverID string, state console.State, retryCount int, filterOn bool, scrollPos string) string {
	var stateStr string
	switch state {
	case console.StateConnected:
		stateStr = sb.theme.StateConnected.Render("● connected")
	case console.StateConnecting:
		stateStr = sb.theme.StateConnecting.Render("◌ connecting")
	case console.StateRetrying:
		stateStr = sb.theme.StateRetrying.Render(fmt.Sprintf("◌ retrying %d/5", retryCount))
	case console.StateError:
		stateStr = sb.theme.StateError.Render("✗ error")
	default:
		stateStr = sb.theme.StateDisconnected.Render("○ disconnected")
	}

	filter := sb.theme.FilterOff.Render("filter:off")
	if filterOn {
		filter = sb.theme.FilterOn.Render("filter:on")
	}

	left := fmt.Sprintf(" %s  %s  %s", util.TruncateRunes(serverID, 24), stateStr, filter)
	if scrollPos != "" {
		left += "  " + sb.theme.ScrollIndicator.Render(scrollPos)
	}

	hints := sb.theme.ShortcutKey.Render("^F") + sb.theme.ShortcutDesc.Render(" filter ") +
		sb.theme.ShortcutKey.Render("^R") + sb.theme.ShortcutDesc.Render(" resync ") +
		sb.theme.ShortcutKey.Render("^Q") + sb.theme.ShortcutDesc.Render(" quit ")

	pad := sb.width - runewidth.StringWidth(stripANSI(left)) - runewidth.StringWidth(stripANSI(hints))
	if pad < 1 {
		pad = 1
	}
	return sb.theme.StatusBar.Render(left + strings.Repeat(" ", pad) + hints)
}

// stripANSI removes escape sequences for width measurement.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
