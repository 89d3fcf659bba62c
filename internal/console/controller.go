// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/xyqyear/mcadmin-console/internal/protocol"
)

// =============================================================================
// CONNECTION STATE
// =============================================================================

// State is the connection lifecycle state of a session.
type State int

const (
	// StateDisconnected means no transport exists and none is wanted.
	StateDisconnected State = iota
	// StateConnecting means a dial is in flight.
	StateConnecting
	// StateConnected means the transport is live and frames may flow.
	StateConnected
	// StateRetrying means a reconnect attempt is scheduled.
	StateRetrying
	// StateError means the retry budget is spent; only an explicit
	// Connect() leaves this state.
	StateError
)

// String returns the lowercase state name for status display.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateRetrying:
		return "retrying"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// retryBackoff is the reconnect delay schedule, indexed by prior failure
// count and capped at the last entry.
var retryBackoff = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
	16 * time.Second,
}

// maxRetryAttempts is the consecutive-failure budget. The fifth failure
// lands in StateError instead of scheduling another attempt.
const maxRetryAttempts = 5

// defaultSettleDelay is how long the resync waits after set_filter before
// requesting the refreshed buffer, giving the server time to apply the
// setting.
const defaultSettleDelay = 100 * time.Millisecond

// =============================================================================
// EVENTS AND KEYSTROKES
// =============================================================================

// Event tells an observer which slice of session state changed. The view
// re-reads the relevant accessor on receipt; events carry no payload.
type Event int

const (
	// EventState: connection state, retry count or last error changed.
	EventState Event = iota
	// EventTranscript: entries were appended to the transcript.
	EventTranscript
	// EventTranscriptReplaced: the transcript was wholesale replaced;
	// the view must re-enable auto-scroll.
	EventTranscriptReplaced
	// EventInput: the input line buffer changed.
	EventInput
	// EventFilter: the filter flag changed.
	EventFilter
)

// KeyKind classifies a keystroke for the line-editing layer.
type KeyKind int

const (
	// KeyRune is a printable rune (tab included).
	KeyRune KeyKind = iota
	// KeyEnter submits the buffered line.
	KeyEnter
	// KeyBackspace erases the trailing rune.
	KeyBackspace
	// KeyEscape cancels the buffered line.
	KeyEscape
)

// Keystroke is one classified local key event. Pastes arrive as a sequence
// of KeyRune strokes; there is no batch path.
type Keystroke struct {
	Kind KeyKind
	Rune rune
}

// =============================================================================
// CONTROLLER OPTIONS
// =============================================================================

// Options configures a Controller. Zero-value fields get production
// defaults; tests inject fakes for Dialer and Clock.
type Options struct {
	// ServerID identifies the target server instance.
	ServerID string

	// Endpoint returns the websocket URL for the next connection attempt.
	// It is called per attempt so a refreshed token is picked up naturally.
	Endpoint func() (string, error)

	// Dialer opens transports. Defaults to the websocket dialer.
	Dialer Dialer

	// Clock drives retry and settle timers. Defaults to the system clock.
	Clock Clock

	// Notify observes session changes. Called without internal locks held;
	// may be nil.
	Notify func(Event)

	// OnCommand is invoked for every submitted command line (history
	// persistence hook). May be nil.
	OnCommand func(cmd string)

	// Limiter throttles outbound command frames. Defaults to 5/s burst 10.
	Limiter *rate.Limiter

	// ErrorFramesFatal selects the strict policy: any server error frame
	// forces a disconnect and reconnection. The default renders the error
	// inline and keeps the session, because servers also use error frames
	// for command-level failures.
	ErrorFramesFatal bool

	// FilterDefault is the filter flag assumed before the server reports
	// one via a filter_updated frame.
	FilterDefault bool

	// SettleDelay overrides the resync settle delay.
	SettleDelay time.Duration

	// Logger receives local diagnostics (dropped frames, dial errors).
	// May be nil.
	Logger *log.Logger
}

// =============================================================================
// CONNECTION CONTROLLER
// =============================================================================

// Controller owns one console session: the transport lifecycle, the
// reconnection state machine, the transcript, and the input line.
//
// Concurrency model: every entry point (caller-invoked operations and
// transport callbacks alike) serializes on one mutex, so handlers for a
// session never interleave. A transport superseded by a newer attempt can
// still fire delayed events; those carry the generation they were dialed
// under and are discarded when it no longer matches.
type Controller struct {
	mu   sync.Mutex
	opts Options

	state      State
	generation uint64
	retryCount int
	lastError  string
	filterOn   bool

	transport  Transport
	retryTimer Timer

	settleSeq    int
	settleTimers map[int]Timer

	transcript Transcript
	line       LineBuffer
}

// NewController creates a controller in StateDisconnected. Nothing dials
// until Connect.
func NewController(opts Options) *Controller {
	if opts.Dialer == nil {
		opts.Dialer = NewWebsocketDialer()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Limit(5), 10)
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = defaultSettleDelay
	}
	return &Controller{
		opts:         opts,
		filterOn:     opts.FilterDefault,
		settleTimers: make(map[int]Timer),
	}
}

// =============================================================================
// PUBLIC OPERATIONS
// =============================================================================

// Connect starts a connection attempt. While CONNECTING or CONNECTED it is
// a no-op: a fresh connection requires Disconnect first, so repeated calls
// can never stack transports. From RETRYING it cancels the pending timer
// and dials immediately; from ERROR it is the only way out.
func (c *Controller) Connect() {
	c.mu.Lock()
	var evs []Event
	switch c.state {
	case StateConnecting, StateConnected:
		// Idempotent: one live transport, no transition.
	default:
		c.stopTimersLocked()
		evs = c.beginAttemptLocked()
	}
	c.mu.Unlock()
	c.emit(evs)
}

// Disconnect tears the session down from any state: pending timers are
// cancelled, the transport is closed and detached, and the input line is
// discarded. Late events from the old transport are inert because the
// generation has moved on.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	evs := c.disconnectLocked()
	c.mu.Unlock()
	c.emit(evs)
}

// HandleKey runs one keystroke through the line-editing classifier. Every
// local key passes through here; nothing is ever forwarded raw.
func (c *Controller) HandleKey(k Keystroke) {
	c.mu.Lock()
	var evs []Event
	switch k.Kind {
	case KeyRune:
		c.line.Append(k.Rune)
		evs = append(evs, EventInput)
	case KeyBackspace:
		if c.line.PopLast() {
			evs = append(evs, EventInput)
		}
	case KeyEscape:
		if c.line.Len() > 0 {
			c.transcript.Append(EntryCommand, "> "+c.line.String()+"^C")
			c.line.Clear()
			evs = append(evs, EventInput, EventTranscript)
		}
	case KeyEnter:
		evs = c.submitLocked()
	}
	c.mu.Unlock()
	c.emit(evs)
}

// SetInput replaces the input line, for history recall.
func (c *Controller) SetInput(s string) {
	c.mu.Lock()
	c.line.Set(s)
	c.mu.Unlock()
	c.emit([]Event{EventInput})
}

// ToggleFilter flips server-side RCON filtering and starts the resync
// sequence: set_filter now, refresh_logs after the settle delay. Dropped
// silently unless connected.
func (c *Controller) ToggleFilter() {
	c.mu.Lock()
	var evs []Event
	if c.state == StateConnected {
		c.filterOn = !c.filterOn
		evs = append(evs, EventFilter)
		evs = append(evs, c.sendFrameLocked(protocol.SetFilter{Enabled: c.filterOn})...)
		c.scheduleSettleLocked()
	}
	c.mu.Unlock()
	c.emit(evs)
}

// Refresh requests the authoritative server buffer immediately, outside
// the toggle resync path. Dropped silently unless connected.
func (c *Controller) Refresh() {
	c.mu.Lock()
	evs := c.sendFrameLocked(protocol.RefreshLogs{})
	c.mu.Unlock()
	c.emit(evs)
}

// SendResize reports the local terminal dimensions. Dropped silently
// unless connected.
func (c *Controller) SendResize(cols, rows int) {
	c.mu.Lock()
	evs := c.sendFrameLocked(protocol.Resize{Cols: cols, Rows: rows})
	c.mu.Unlock()
	c.emit(evs)
}

// =============================================================================
// SNAPSHOT ACCESSORS
// =============================================================================

// ServerID returns the target server id.
func (c *Controller) ServerID() string { return c.opts.ServerID }

// State returns the current connection state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RetryCount returns the consecutive failed attempt count.
func (c *Controller) RetryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retryCount
}

// LastError returns the most recent transport or application error text.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// FilterEnabled returns the server-side filter flag.
func (c *Controller) FilterEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filterOn
}

// Input returns the current input line.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.line.String()
}

// Entries returns a copy of the transcript entries.
func (c *Controller) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Entries()
}

// TranscriptString returns the flattened transcript text.
func (c *Controller) TranscriptString() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.String()
}

// Replaces returns the transcript replacement counter.
func (c *Controller) Replaces() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Replaces()
}

// Generation returns the current connection attempt id.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// =============================================================================
// CONNECTION ATTEMPTS
// =============================================================================

// beginAttemptLocked advances the generation and launches a dial for it.
func (c *Controller) beginAttemptLocked() []Event {
	c.generation++
	gen := c.generation
	c.state = StateConnecting
	c.transcript.Append(EntryBanner, "-- connecting --")
	go c.dial(gen)
	return []Event{EventState, EventTranscript}
}

// dial runs outside the lock: it resolves the endpoint, opens the
// transport and reports the outcome tagged with its generation.
func (c *Controller) dial(gen uint64) {
	url, err := c.opts.Endpoint()
	if err != nil {
		c.attemptFailed(gen, fmt.Errorf("resolving console endpoint: %w", err))
		return
	}

	tr, err := c.opts.Dialer.Dial(url, Handlers{
		OnMessage: func(data []byte) { c.handleMessage(gen, data) },
		OnClose:   func(code int, reason string) { c.handleClose(gen, code, reason) },
		OnError:   func(err error) { c.handleTransportError(gen, err) },
	})
	if err != nil {
		c.attemptFailed(gen, err)
		return
	}
	c.handleOpen(gen, tr)
}

// handleOpen installs a freshly dialed transport, unless a newer attempt
// or a disconnect superseded it while the dial was in flight.
func (c *Controller) handleOpen(gen uint64, tr Transport) {
	c.mu.Lock()
	if gen != c.generation || c.state != StateConnecting {
		c.mu.Unlock()
		tr.Close()
		return
	}
	c.transport = tr
	c.state = StateConnected
	c.retryCount = 0
	c.lastError = ""
	c.transcript.Append(EntryBanner, "-- connected --")
	c.mu.Unlock()
	c.emit([]Event{EventState, EventTranscript})
}

func (c *Controller) attemptFailed(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	evs := c.failureLocked(err)
	c.mu.Unlock()
	c.emit(evs)
}

// failureLocked records one consecutive failure and either schedules the
// next attempt or, on the fifth, gives up into StateError.
func (c *Controller) failureLocked(err error) []Event {
	c.lastError = err.Error()
	c.line.Clear()
	if c.transport != nil {
		// Supersede before closing: Close unblocks the transport's read
		// pump, which then reports a read error. That event carries the
		// old generation and must not count as a second failure.
		c.generation++
		c.transport.Close()
		c.transport = nil
	}

	c.retryCount++
	if c.retryCount >= maxRetryAttempts {
		c.state = StateError
		c.transcript.Append(EntryBanner, fmt.Sprintf("-- connection failed: %s --", c.lastError))
		c.transcript.Append(EntryBanner, "-- reconnect budget exhausted --")
		return []Event{EventState, EventTranscript, EventInput}
	}

	delay := retryBackoff[minInt(c.retryCount-1, len(retryBackoff)-1)]
	c.state = StateRetrying
	c.transcript.Append(EntryBanner,
		fmt.Sprintf("-- retrying (%d/%d) in %s --", c.retryCount, maxRetryAttempts, delay))
	c.retryTimer = c.opts.Clock.AfterFunc(delay, c.retryFire)
	return []Event{EventState, EventTranscript, EventInput}
}

// retryFire runs when the backoff delay elapses. A disconnect or explicit
// connect in the meantime leaves StateRetrying, making this a no-op.
func (c *Controller) retryFire() {
	c.mu.Lock()
	if c.state != StateRetrying {
		c.mu.Unlock()
		return
	}
	c.retryTimer = nil
	evs := c.beginAttemptLocked()
	c.mu.Unlock()
	c.emit(evs)
}

// =============================================================================
// TRANSPORT EVENTS
// =============================================================================

func (c *Controller) handleClose(gen uint64, code int, reason string) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	var evs []Event
	if IsNormalClose(code) {
		evs = c.disconnectLocked()
	} else {
		evs = c.failureLocked(fmt.Errorf("connection closed (code %d): %s", code, reason))
	}
	c.mu.Unlock()
	c.emit(evs)
}

func (c *Controller) handleTransportError(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	evs := c.failureLocked(err)
	c.mu.Unlock()
	c.emit(evs)
}

// handleMessage decodes and dispatches one inbound frame. Malformed frames
// are logged and dropped here; they never count against the retry budget.
func (c *Controller) handleMessage(gen uint64, data []byte) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}

	frame, err := protocol.DecodeInbound(data)
	if err != nil {
		c.logf("dropping bad frame from server %s: %v", c.opts.ServerID, err)
		c.mu.Unlock()
		return
	}

	var evs []Event
	switch f := frame.(type) {
	case protocol.Log:
		c.transcript.Append(EntryLog, f.Content)
		evs = append(evs, EventTranscript)
	case protocol.LogsRefreshed:
		c.transcript.Replace(f.Content)
		evs = append(evs, EventTranscriptReplaced)
	case protocol.CommandResult:
		c.transcript.Append(EntryCommand, "> "+f.Command)
		c.transcript.Append(EntryResult, f.Result)
		evs = append(evs, EventTranscript)
	case protocol.ErrorFrame:
		c.transcript.Append(EntryError, f.Message)
		evs = append(evs, EventTranscript)
		if c.opts.ErrorFramesFatal {
			evs = append(evs, c.failureLocked(errors.New(f.Message))...)
		}
	case protocol.Info:
		c.transcript.Append(EntryInfo, f.Message)
		evs = append(evs, EventTranscript)
	case protocol.FilterUpdated:
		// Acknowledgement only; the transcript is untouched.
		c.filterOn = f.Enabled
		evs = append(evs, EventFilter)
	}
	c.mu.Unlock()
	c.emit(evs)
}

// =============================================================================
// SUBMISSION AND RESYNC
// =============================================================================

// submitLocked handles Enter: a non-empty buffer becomes one command
// frame. Frames are dropped, never queued, when not connected.
func (c *Controller) submitLocked() []Event {
	cmd := c.line.String()
	if cmd == "" {
		return nil
	}
	c.line.Clear()
	evs := []Event{EventInput}

	if c.state != StateConnected {
		return evs
	}
	if !c.opts.Limiter.Allow() {
		c.transcript.Append(EntryError, "command rate limit exceeded; dropped: "+cmd)
		return append(evs, EventTranscript)
	}

	if c.opts.OnCommand != nil {
		c.opts.OnCommand(cmd)
	}
	return append(evs, c.sendFrameLocked(protocol.Command{Text: cmd})...)
}

// sendFrameLocked transmits one frame if and only if connected; a write
// failure is treated as a transport failure for the current generation.
func (c *Controller) sendFrameLocked(m protocol.Outbound) []Event {
	if c.state != StateConnected || c.transport == nil {
		return nil
	}
	data, err := protocol.EncodeOutbound(m)
	if err != nil {
		c.logf("encoding frame: %v", err)
		return nil
	}
	if err := c.transport.Send(data); err != nil {
		return c.failureLocked(fmt.Errorf("write failed: %w", err))
	}
	return nil
}

// scheduleSettleLocked arms one refresh_logs timer for the toggle that
// just happened. Each toggle gets its own timer so every set_filter is
// followed by exactly one refresh_logs.
func (c *Controller) scheduleSettleLocked() {
	c.settleSeq++
	id := c.settleSeq
	gen := c.generation
	c.settleTimers[id] = c.opts.Clock.AfterFunc(c.opts.SettleDelay, func() {
		c.settleFire(id, gen)
	})
}

func (c *Controller) settleFire(id int, gen uint64) {
	c.mu.Lock()
	delete(c.settleTimers, id)
	if gen != c.generation || c.state != StateConnected {
		c.mu.Unlock()
		return
	}
	evs := c.sendFrameLocked(protocol.RefreshLogs{})
	c.mu.Unlock()
	c.emit(evs)
}

// =============================================================================
// TEARDOWN
// =============================================================================

// disconnectLocked is the total cancellation path: no timer stays armed,
// no transport reference survives, and the generation advances so
// anything in flight lands dead.
func (c *Controller) disconnectLocked() []Event {
	c.stopTimersLocked()
	c.generation++
	if c.transport != nil {
		c.transport.Close()
		c.transport = nil
	}
	c.line.Clear()

	if c.state == StateDisconnected {
		return nil
	}
	c.state = StateDisconnected
	c.transcript.Append(EntryBanner, "-- disconnected --")
	return []Event{EventState, EventTranscript, EventInput}
}

func (c *Controller) stopTimersLocked() {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	for id, t := range c.settleTimers {
		t.Stop()
		delete(c.settleTimers, id)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Controller) emit(evs []Event) {
	if c.opts.Notify == nil {
		return
	}
	for _, ev := range evs {
		c.opts.Notify(ev)
	}
}

func (c *Controller) logf(format string, args ...interface{}) {
	if c.opts.Logger != nil {
		c.opts.Logger.Printf(format, args...)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
