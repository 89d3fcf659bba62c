// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package consoleview provides the interactive console view for the TUI.
package consoleview

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xyqyear/mcadmin-console/internal/console"
	"github.com/xyqyear/mcadmin-console/internal/history"
	"github.com/xyqyear/mcadmin-console/internal/ui/components"
	"github.com/xyqyear/mcadmin-console/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// SessionEvent wraps a controller event for the Bubble Tea loop. The
// controller's Notify callback forwards events here via Program.Send, so
// all rendering stays on the UI goroutine.
type SessionEvent struct {
	Event console.Event
}

// =============================================================================
// CONSOLE MODEL
// =============================================================================

// Model is the Bubble Tea model for one console session.
type Model struct {
	ctrl  *console.Controller
	hist  *history.Store // nil when history is disabled
	theme *styles.Theme

	viewport  *components.TranscriptViewport
	statusbar *components.StatusBar
	keyMap    KeyMap

	// recall is a lazily-created history cursor; nil means the user is on
	// the live line with no recall in progress.
	recall *history.Recall

	width  int
	height int
	ready  bool
}

// New creates a console view bound to a controller.
func New(ctrl *console.Controller, hist *history.Store, theme *styles.Theme) *Model {
	return &Model{
		ctrl:      ctrl,
		hist:      hist,
		theme:     theme,
		viewport:  components.NewTranscriptViewport(theme),
		statusbar: components.NewStatusBar(theme),
		keyMap:    DefaultKeyMap(),
	}
}

// Init starts the connection.
func (m *Model) Init() tea.Cmd {
	m.ctrl.Connect()
	return nil
}

// Update handles terminal and session events.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		// Two rows are reserved for the prompt and status bar.
		m.viewport.SetSize(msg.Width, msg.Height-2)
		m.statusbar.SetWidth(msg.Width)
		m.ctrl.SendResize(msg.Width, msg.Height-2)
		return m, nil

	case SessionEvent:
		switch msg.Event {
		case console.EventTranscript, console.EventTranscriptReplaced:
			m.viewport.SetEntries(m.ctrl.Entries(), m.ctrl.Replaces())
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.ctrl.Disconnect()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.ToggleFilter):
		m.ctrl.ToggleFilter()
		return m, nil

	case key.Matches(msg, m.keyMap.Refresh):
		m.ctrl.Refresh()
		return m, nil

	case key.Matches(msg, m.keyMap.Reconnect):
		m.ctrl.Connect()
		return m, nil

	case key.Matches(msg, m.keyMap.HistoryUp):
		m.historyUp()
		return m, nil

	case key.Matches(msg, m.keyMap.HistoryDown):
		m.historyDown()
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp),
		key.Matches(msg, m.keyMap.PageDown),
		key.Matches(msg, m.keyMap.Top),
		key.Matches(msg, m.keyMap.Bottom):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	strokes, ok := Classify(msg)
	if !ok {
		return m, nil
	}
	// Any edit ends history recall; the next Up starts from the edited
	// live line.
	m.recall = nil
	for _, k := range strokes {
		m.ctrl.HandleKey(k)
	}
	return m, nil
}

// =============================================================================
// HISTORY RECALL
// =============================================================================

func (m *Model) historyUp() {
	if m.recall == nil {
		m.recall = history.NewRecall(m.recentCommands())
	}
	if s, ok := m.recall.Up(m.ctrl.Input()); ok {
		m.ctrl.SetInput(s)
	}
}

func (m *Model) historyDown() {
	if m.recall == nil {
		return
	}
	if s, ok := m.recall.Down(); ok {
		m.ctrl.SetInput(s)
	}
}

func (m *Model) recentCommands() []string {
	if m.hist == nil {
		return nil
	}
	entries, err := m.hist.Recent(context.Background(), m.ctrl.ServerID(), 100)
	if err != nil {
		return nil
	}
	return entries
}
