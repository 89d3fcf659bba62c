// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package consoleview

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/xyqyear/mcadmin-console/internal/console"
	"github.com/xyqyear/mcadmin-console/internal/ui/styles"
)

// stubTransport records sent frames; the dialer always succeeds.
type stubTransport struct {
	mu   sync.Mutex
	h    console.Handlers
	sent [][]byte
}

func (t *stubTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	t.sent = append(t.sent, cp)
	return nil
}

func (t *stubTransport) Close() error { return nil }

func (t *stubTransport) frames(tb testing.TB) []map[string]interface{} {
	tb.Helper()
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]map[string]interface{}, 0, len(t.sent))
	for _, data := range t.sent {
		var m map[string]interface{}
		require.NoError(tb, json.Unmarshal(data, &m))
		out = append(out, m)
	}
	return out
}

type stubDialer struct {
	mu sync.Mutex
	tr *stubTransport
}

func (d *stubDialer) Dial(url string, h console.Handlers) (console.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tr = &stubTransport{h: h}
	return d.tr, nil
}

func newTestModel(t *testing.T) (*Model, *stubDialer) {
	t.Helper()
	d := &stubDialer{}
	ctrl := console.NewController(console.Options{
		ServerID: "survival",
		Endpoint: func() (string, error) { return "ws://test/console", nil },
		Dialer:   d,
	})
	m := New(ctrl, nil, styles.NewTheme("dark"))
	m.Init()

	deadline := time.Now().Add(2 * time.Second)
	for ctrl.State() != console.StateConnected {
		if time.Now().After(deadline) {
			t.Fatal("controller never connected")
		}
		time.Sleep(time.Millisecond)
	}
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, d
}

func TestWindowSizeSendsResize(t *testing.T) {
	m, d := newTestModel(t)
	_ = m

	frames := d.tr.frames(t)
	require.NotEmpty(t, frames)
	last := frames[len(frames)-1]
	require.Equal(t, "resize", last["type"])
	require.Equal(t, float64(80), last["cols"])
	require.Equal(t, float64(22), last["rows"], "prompt and status rows are reserved")
}

func TestTypedKeysReachController(t *testing.T) {
	m, d := newTestModel(t)

	for _, r := range "list" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	var cmd map[string]interface{}
	for _, f := range d.tr.frames(t) {
		if f["type"] == "command" {
			cmd = f
		}
	}
	require.NotNil(t, cmd, "command frame never sent")
	require.Equal(t, "list", cmd["command"])
}

func TestCtrlFTogglesFilter(t *testing.T) {
	m, d := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlF})

	var found bool
	for _, f := range d.tr.frames(t) {
		if f["type"] == "set_filter" {
			found = true
			require.Equal(t, true, f["filter_rcon"])
		}
	}
	require.True(t, found, "set_filter frame never sent")
}

func TestViewShowsPromptAndStatus(t *testing.T) {
	m, _ := newTestModel(t)

	for _, r := range "say" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	view := m.View()
	require.Contains(t, view, "say")
	require.Contains(t, view, "survival")
}

func TestQuitDisconnects(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.NotNil(t, cmd, "quit should produce a command")
	require.Equal(t, console.StateDisconnected, m.ctrl.State())
}

func TestSessionEventRefreshesTranscript(t *testing.T) {
	m, d := newTestModel(t)

	d.tr.h.OnMessage([]byte(`{"type":"log","content":"[Server] Player joined\n"}`))
	m.Update(SessionEvent{Event: console.EventTranscript})

	require.True(t, strings.Contains(m.View(), "Player joined"),
		"transcript event should refresh the viewport")
}
