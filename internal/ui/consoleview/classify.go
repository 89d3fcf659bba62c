// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package consoleview

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xyqyear/mcadmin-console/internal/console"
)

// =============================================================================
// KEYSTROKE CLASSIFIER
// =============================================================================

// Classify maps a terminal key event to line-editing keystrokes. A paste
// arrives as one KeyMsg carrying many runes and expands to one keystroke
// per rune; there is no batch path into the input buffer. Keys that are
// not line editing return ok=false.
func Classify(msg tea.KeyMsg) ([]console.Keystroke, bool) {
	switch msg.Type {
	case tea.KeyEnter:
		return []console.Keystroke{{Kind: console.KeyEnter}}, true
	case tea.KeyBackspace:
		return []console.Keystroke{{Kind: console.KeyBackspace}}, true
	case tea.KeyEsc:
		return []console.Keystroke{{Kind: console.KeyEscape}}, true
	case tea.KeySpace:
		return []console.Keystroke{{Kind: console.KeyRune, Rune: ' '}}, true
	case tea.KeyTab:
		return []console.Keystroke{{Kind: console.KeyRune, Rune: '\t'}}, true
	case tea.KeyRunes:
		out := make([]console.Keystroke, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			out = append(out, console.Keystroke{Kind: console.KeyRune, Rune: r})
		}
		return out, len(out) > 0
	default:
		return nil, false
	}
}
