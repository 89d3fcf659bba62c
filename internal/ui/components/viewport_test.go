// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/xyqyear/mcadmin-console/internal/console"
	"github.com/xyqyear/mcadmin-console/internal/ui/styles"
)

func entriesOf(lines ...string) []console.Entry {
	out := make([]console.Entry, len(lines))
	for i, l := range lines {
		out[i] = console.Entry{Kind: console.EntryLog, Text: l + "\n"}
	}
	return out
}

func TestAutoScrollDisablesOnManualScroll(t *testing.T) {
	tv := NewTranscriptViewport(styles.NewTheme("dark"))
	tv.SetSize(40, 5)
	tv.SetEntries(entriesOf("a", "b", "c", "d", "e", "f", "g", "h"), 0)

	if !tv.AutoScroll() {
		t.Fatal("auto-scroll should start enabled")
	}
	tv.ScrollUp(2)
	if tv.AutoScroll() {
		t.Error("manual scroll up should disable auto-scroll")
	}
	tv.ScrollDown(100)
	if !tv.AutoScroll() {
		t.Error("reaching the bottom should re-enable auto-scroll")
	}
}

func TestReplaceForcesAutoScrollBackOn(t *testing.T) {
	tv := NewTranscriptViewport(styles.NewTheme("dark"))
	tv.SetSize(40, 5)
	tv.SetEntries(entriesOf("a", "b", "c", "d", "e", "f", "g", "h"), 0)

	tv.ScrollUp(3)
	if tv.AutoScroll() {
		t.Fatal("precondition: auto-scroll disabled")
	}

	// Same replace counter: user keeps control.
	tv.SetEntries(entriesOf("a", "b", "c", "d", "e", "f", "g", "h", "i"), 0)
	if tv.AutoScroll() {
		t.Error("append must not steal scroll position")
	}

	// Replace counter advanced: resync swapped the buffer.
	tv.SetEntries(entriesOf("fresh"), 1)
	if !tv.AutoScroll() {
		t.Error("transcript replacement must re-enable auto-scroll")
	}
}

func TestWrapContentWideRunes(t *testing.T) {
	wrapped := wrapContent("ｗｉｄｅ", 4)
	lines := strings.Split(wrapped, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), wrapped)
	}
	// Each full-width rune occupies two cells, so two runes fit per line.
	if lines[0] != "ｗｉ" || lines[1] != "ｄｅ" {
		t.Errorf("unexpected wrap: %q", lines)
	}
}

func TestWrapContentPreservesShortLines(t *testing.T) {
	in := "one\ntwo\nthree"
	if got := wrapContent(in, 10); got != in {
		t.Errorf("short lines should pass through: %q", got)
	}
}

func TestScrollPosition(t *testing.T) {
	tv := NewTranscriptViewport(styles.NewTheme("dark"))
	tv.SetSize(40, 5)
	tv.SetEntries(entriesOf("a", "b", "c"), 0)
	if pos := tv.ScrollPosition(); pos != "" {
		t.Errorf("content fits, position should be empty, got %q", pos)
	}

	tv.SetEntries(entriesOf("a", "b", "c", "d", "e", "f", "g", "h", "i", "j"), 0)
	if pos := tv.ScrollPosition(); pos == "" {
		t.Error("overflowing content should report a position")
	}
}
