// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/xyqyear/mcadmin-console/internal/console"
	"github.com/xyqyear/mcadmin-console/internal/ui/styles"
)

func TestStatusBarStates(t *testing.T) {
	sb := NewStatusBar(styles.NewTheme("dark"))
	sb.SetWidth(100)

	tests := []struct {
		state console.State
		retry int
		want  string
	}{
		{console.StateConnected, 0, "connected"},
		{console.StateConnecting, 0, "connecting"},
		{console.StateRetrying, 3, "retrying 3/5"},
		{console.StateError, 5, "error"},
		{console.StateDisconnected, 0, "disconnected"},
	}
	for _, tt := range tests {
		got := stripANSI(sb.Render("survival", tt.state, tt.retry, false, ""))
		if !strings.Contains(got, tt.want) {
			t.Errorf("state %v: %q does not contain %q", tt.state, got, tt.want)
		}
		if !strings.Contains(got, "survival") {
			t.Errorf("status bar missing server id: %q", got)
		}
	}
}

func TestStatusBarFilterFlag(t *testing.T) {
	sb := NewStatusBar(styles.NewTheme("dark"))
	sb.SetWidth(100)

	on := stripANSI(sb.Render("s", console.StateConnected, 0, true, ""))
	off := stripANSI(sb.Render("s", console.StateConnected, 0, false, ""))
	if !strings.Contains(on, "filter:on") {
		t.Errorf("missing filter:on in %q", on)
	}
	if !strings.Contains(off, "filter:off") {
		t.Errorf("missing filter:off in %q", off)
	}
}

func TestStatusBarTruncatesLongServerID(t *testing.T) {
	sb := NewStatusBar(styles.NewTheme("dark"))
	sb.SetWidth(100)

	long := strings.Repeat("x", 40)
	got := stripANSI(sb.Render(long, console.StateConnected, 0, false, ""))
	if strings.Contains(got, long) {
		t.Errorf("long server id not truncated: %q", got)
	}
	if !strings.Contains(got, "xxx...") {
		t.Errorf("expected ellipsis in %q", got)
	}
}

func TestStripANSI(t *testing.T) {
	in := "\x1b[1;32mgreen\x1b[0m plain"
	if got := stripANSI(in); got != "green plain" {
		t.Errorf("stripANSI = %q", got)
	}
}
