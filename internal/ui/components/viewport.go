// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the console TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/xyqyear/mcadmin-console/internal/console"
	"github.com/xyqyear/mcadmin-console/internal/ui/styles"
)

// =============================================================================
// TRANSCRIPT VIEWPORT - Scrollable console output with auto-scroll
// =============================================================================

// TranscriptViewport renders the session transcript with scroll tracking.
// Auto-scroll keeps the latest output visible; scrolling up hands control
// to the user until they return to the bottom or the transcript is
// wholesale replaced by a resync.
type TranscriptViewport struct {
	viewport   viewport.Model
	entries    []console.Entry
	width      int
	height     int
	ready      bool
	autoScroll bool
	theme      *styles.Theme

	// lastReplaces tracks the transcript replacement counter so a resync
	// forces auto-scroll back on.
	lastReplaces int

	scrollY    int
	maxScrollY int
}

// NewTranscriptViewport creates a transcript viewport.
func NewTranscriptViewport(theme *styles.Theme) *TranscriptViewport {
	vp := viewport.New(80, 20)
	return &TranscriptViewport{
		viewport:   vp,
		width:      80,
		height:     20,
		autoScroll: true,
		theme:      theme,
	}
}

// SetSize updates the viewport dimensions.
func (tv *TranscriptViewport) SetSize(width, height int) {
	tv.width = width
	tv.height = height
	tv.viewport.Width = width
	tv.viewport.Height = height
	tv.ready = true
	tv.updateContent()
	if tv.autoScroll {
		tv.ScrollToBottom()
	}
}

// SetEntries replaces the displayed entries. replaces is the transcript's
// replacement counter; when it advances, the whole buffer was swapped by a
// resync and auto-scroll is re-enabled regardless of where the user was.
func (tv *TranscriptViewport) SetEntries(entries []console.Entry, replaces int) {
	tv.entries = entries
	if replaces != tv.lastReplaces {
		tv.lastReplaces = replaces
		tv.autoScroll = true
	}
	tv.updateContent()
	if tv.autoScroll {
		tv.ScrollToBottom()
	}
}

// updateContent re-renders the entries and refreshes scroll tracking.
func (tv *TranscriptViewport) updateContent() {
	var b strings.Builder
	for _, e := range tv.entries {
		b.WriteString(tv.renderEntry(e))
	}
	content := wrapContent(strings.TrimSuffix(b.String(), "\n"), tv.width)
	tv.viewport.SetContent(content)

	lines := strings.Count(content, "\n") + 1
	tv.maxScrollY = maxInt(0, lines-tv.height)
	tv.scrollY = tv.viewport.YOffset
	if tv.scrollY > tv.maxScrollY {
		tv.scrollY = tv.maxScrollY
	}
	if tv.scrollY < 0 {
		tv.scrollY = 0
	}
}

// renderEntry styles one entry by kind. Entry text already carries its
// trailing newline.
func (tv *TranscriptViewport) renderEntry(e console.Entry) string {
	text := strings.TrimSuffix(e.Text, "\n")
	var styled string
	switch e.Kind {
	case console.EntryBanner:
		styled = tv.theme.Banner.Render(text)
	case console.EntryCommand:
		styled = tv.theme.Command.Render(text)
	case console.EntryResult:
		styled = tv.theme.Result.Render(text)
	case console.EntryInfo:
		styled = tv.theme.Info.Render(text)
	case console.EntryError:
		styled = tv.theme.Error.Render(text)
	default:
		styled = tv.theme.Log.Render(text)
	}
	if strings.HasSuffix(e.Text, "\n") {
		return styled + "\n"
	}
	return styled
}

// =============================================================================
// SCROLLING
// =============================================================================

// ScrollToBottom scrolls to the bottom and re-enables auto-scroll.
func (tv *TranscriptViewport) ScrollToBottom() {
	tv.viewport.GotoBottom()
	tv.scrollY = tv.maxScrollY
	tv.autoScroll = true
}

// ScrollToTop scrolls to the top; the user has taken control.
func (tv *TranscriptViewport) ScrollToTop() {
	tv.viewport.GotoTop()
	tv.scrollY = 0
	tv.autoScroll = false
}

// ScrollUp scrolls up and disables auto-scroll.
func (tv *TranscriptViewport) ScrollUp(lines int) {
	tv.autoScroll = false
	tv.scrollY = maxInt(0, tv.scrollY-lines)
	tv.viewport.SetYOffset(tv.scrollY)
}

// ScrollDown scrolls down; reaching the bottom re-enables auto-scroll.
func (tv *TranscriptViewport) ScrollDown(lines int) {
	tv.scrollY = minInt(tv.maxScrollY, tv.scrollY+lines)
	tv.viewport.SetYOffset(tv.scrollY)
	if tv.scrollY >= tv.maxScrollY {
		tv.autoScroll = true
	}
}

// PageUp scrolls up one page.
func (tv *TranscriptViewport) PageUp() { tv.ScrollUp(tv.height) }

// PageDown scrolls down one page.
func (tv *TranscriptViewport) PageDown() { tv.ScrollDown(tv.height) }

// AutoScroll reports whether auto-scroll is active.
func (tv *TranscriptViewport) AutoScroll() bool { return tv.autoScroll }

// ScrollPosition returns the scroll position for status display, e.g.
// "[15/100]". Empty when everything fits on screen.
func (tv *TranscriptViewport) ScrollPosition() string {
	if tv.maxScrollY <= 0 {
		return ""
	}
	return fmt.Sprintf("[%d/%d]", tv.scrollY+1, tv.maxScrollY+1)
}

// Update handles scroll key and mouse events.
func (tv *TranscriptViewport) Update(msg tea.Msg) (*TranscriptViewport, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup":
			tv.PageUp()
			return tv, nil
		case "pgdown", "pgdn":
			tv.PageDown()
			return tv, nil
		case "home":
			tv.ScrollToTop()
			return tv, nil
		case "end":
			tv.ScrollToBottom()
			return tv, nil
		}
	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseWheelUp:
			tv.ScrollUp(3)
			return tv, nil
		case tea.MouseWheelDown:
			tv.ScrollDown(3)
			return tv, nil
		}
	}

	var cmd tea.Cmd
	tv.viewport, cmd = tv.viewport.Update(msg)
	tv.scrollY = tv.viewport.YOffset
	return tv, cmd
}

// View renders the viewport.
func (tv *TranscriptViewport) View() string {
	if !tv.ready {
		return ""
	}
	return tv.viewport.View()
}

// =============================================================================
// CONTENT WRAPPING WITH RUNEWIDTH SUPPORT
// =============================================================================

// wrapContent wraps content to fit within width, using go-runewidth so
// wide characters count their display cells.
func wrapContent(content string, width int) string {
	if width <= 0 {
		return content
	}

	var wrapped strings.Builder
	for _, line := range strings.Split(content, "\n") {
		if wrapped.Len() > 0 {
			wrapped.WriteByte('\n')
		}
		if runewidth.StringWidth(line) <= width {
			wrapped.WriteString(line)
			continue
		}
		wrapped.WriteString(hardWrap(line, width))
	}
	return wrapped.String()
}

// hardWrap breaks one long line at display-width boundaries.
func hardWrap(line string, width int) string {
	var result strings.Builder
	var current strings.Builder
	currentWidth := 0

	for _, r := range line {
		w := runewidth.RuneWidth(r)
		if currentWidth+w > width && current.Len() > 0 {
			if result.Len() > 0 {
				result.WriteByte('\n')
			}
			result.WriteString(current.String())
			current.Reset()
			currentWidth = 0
		}
		current.WriteRune(r)
		currentWidth += w
	}
	if current.Len() > 0 {
		if result.Len() > 0 {
			result.WriteByte('\n')
		}
		result.WriteString(current.String())
	}
	return result.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
