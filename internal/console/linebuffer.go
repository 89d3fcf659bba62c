// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

// =============================================================================
// INPUT LINE BUFFER
// =============================================================================

// LineBuffer accumulates local keystrokes into one command line. The remote
// side only accepts whole commands, so nothing here ever touches the wire
// until Enter submits the line. The cursor is always at the end: the
// protocol has no notion of in-line editing beyond erase-last.
type LineBuffer struct {
	runes []rune
}

// Append adds one rune to the end of the line.
func (b *LineBuffer) Append(r rune) {
	b.runes = append(b.runes, r)
}

// PopLast removes the trailing rune. Returns false when already empty, so
// the renderer knows not to erase a column.
func (b *LineBuffer) PopLast() bool {
	if len(b.runes) == 0 {
		return false
	}
	b.runes = b.runes[:len(b.runes)-1]
	return true
}

// Clear discards the buffered line.
func (b *LineBuffer) Clear() {
	b.runes = b.runes[:0]
}

// Set replaces the buffer contents; used by history recall.
func (b *LineBuffer) Set(s string) {
	b.runes = []rune(s)
}

// String returns the buffered line.
func (b *LineBuffer) String() string {
	return string(b.runes)
}

// Len returns the number of buffered runes.
func (b *LineBuffer) Len() int {
	return len(b.runes)
}
