// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package consoleview

import (
	"strings"

	"github.com/xyqyear/mcadmin-console/internal/console"
)

// =============================================================================
// VIEW RENDERING
// =============================================================================

// View renders the console: transcript, prompt line, status bar.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderPrompt())
	b.WriteString("\n")
	b.WriteString(m.statusbar.Render(
		m.ctrl.ServerID(),
		m.ctrl.State(),
		m.ctrl.RetryCount(),
		m.ctrl.FilterEnabled(),
		m.viewport.ScrollPosition(),
	))
	return b.String()
}

// renderPrompt draws the input line. Outside CONNECTED the prompt is
// dimmed: keystrokes still edit the buffer but nothing will be sent.
func (m *Model) renderPrompt() string {
	input := m.ctrl.Input()
	if m.ctrl.State() == console.StateConnected {
		return m.theme.InputPrompt.Render("> ") +
			m.theme.InputText.Render(input) +
			m.theme.Cursor.Render(" ")
	}
	return m.theme.InputDisabled.Render("> " + input)
}
