// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import "strings"

// =============================================================================
// TRANSCRIPT (OUTPUT BUFFER)
// =============================================================================

// EntryKind classifies a transcript entry so the renderer can style it.
type EntryKind int

const (
	// EntryLog is raw process output, appended verbatim.
	EntryLog EntryKind = iota
	// EntryBanner is a connection state transition notice.
	EntryBanner
	// EntryCommand is the synthetic prompt echo of an executed command.
	EntryCommand
	// EntryResult is the result text paired with an EntryCommand.
	EntryResult
	// EntryInfo is a server informational message.
	EntryInfo
	// EntryError is a server or local error message.
	EntryError
)

// Entry is one element of the visible transcript.
type Entry struct {
	Kind EntryKind
	Text string
}

// Transcript is the materialized, user-visible console buffer. Log entries
// accumulate verbatim; a resync replaces the whole thing. It is owned by
// the Controller and only mutated under its lock.
type Transcript struct {
	entries  []Entry
	replaces int
}

// Append adds one entry. Non-log entries are normalized to end with a
// newline so they occupy their own transcript line.
func (t *Transcript) Append(kind EntryKind, text string) {
	if kind != EntryLog && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	t.entries = append(t.entries, Entry{Kind: kind, Text: text})
}

// Replace discards every entry and installs content as the sole log entry.
// Used for logs_refreshed, which carries the authoritative server buffer.
func (t *Transcript) Replace(content string) {
	t.entries = []Entry{{Kind: EntryLog, Text: content}}
	t.replaces++
}

// Clear empties the transcript without counting as a replace.
func (t *Transcript) Clear() {
	t.entries = nil
}

// Entries returns a copy of the current entries.
func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// String concatenates all entry text. Mostly useful in tests and for the
// history subcommand's plain dump.
func (t *Transcript) String() string {
	var b strings.Builder
	for _, e := range t.entries {
		b.WriteString(e.Text)
	}
	return b.String()
}

// Replaces returns how many wholesale replacements have occurred. The view
// uses a change in this counter to force auto-scroll back on after a
// resync.
func (t *Transcript) Replaces() int {
	return t.replaces
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}
