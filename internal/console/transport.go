// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// =============================================================================
// TRANSPORT ABSTRACTION
// =============================================================================

// Transport is one live connection attempt. A Transport never outlives the
// generation it was dialed under: when the controller supersedes it, late
// events it fires are discarded by the generation guard, not by the
// transport itself.
type Transport interface {
	// Send writes one encoded frame.
	Send(data []byte) error
	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// Handlers receive transport events. All three may be called from the
// transport's internal read goroutine.
type Handlers struct {
	// OnMessage delivers one inbound frame payload.
	OnMessage func(data []byte)
	// OnClose reports the connection ended with a close code. Codes other
	// than normal/going-away are abnormal and drive reconnection.
	OnClose func(code int, reason string)
	// OnError reports a read/transport failure without a close code.
	OnError func(err error)
}

// Dialer opens Transports. The websocket implementation is the production
// one; tests substitute a fake that hands events to the controller
// directly.
type Dialer interface {
	Dial(url string, h Handlers) (Transport, error)
}

// IsNormalClose reports whether a websocket close code represents an
// intentional shutdown rather than a failure.
func IsNormalClose(code int) bool {
	return code == websocket.CloseNormalClosure || code == websocket.CloseGoingAway
}

// =============================================================================
// WEBSOCKET DIALER
// =============================================================================

const wsHandshakeTimeout = 10 * time.Second

// WebsocketDialer dials the panel's console endpoint over websocket.
type WebsocketDialer struct {
	dialer *websocket.Dialer
}

// NewWebsocketDialer returns the production Dialer.
func NewWebsocketDialer() *WebsocketDialer {
	return &WebsocketDialer{
		dialer: &websocket.Dialer{
			HandshakeTimeout: wsHandshakeTimeout,
		},
	}
}

// Dial connects and starts the read pump. The returned Transport is live;
// events flow to h until the connection ends.
func (d *WebsocketDialer) Dial(url string, h Handlers) (Transport, error) {
	conn, resp, err := d.dialer.Dial(url, http.Header{})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("console handshake rejected (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("console dial failed: %w", err)
	}

	t := &wsTransport{conn: conn}
	go t.readPump(h)
	return t, nil
}

// wsTransport wraps a gorilla connection. Writes are serialized by the
// controller's lock; the read pump is the only reader.
type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) Send(data []byte) error {
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}

// readPump delivers frames until the connection dies, then reports how it
// died: a close frame maps to OnClose with its code, anything else to
// OnError.
func (t *wsTransport) readPump(h Handlers) {
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			if ce, ok := err.(*websocket.CloseError); ok {
				if h.OnClose != nil {
					h.OnClose(ce.Code, ce.Text)
				}
			} else if h.OnError != nil {
				h.OnError(err)
			}
			return
		}
		if h.OnMessage != nil {
			h.OnMessage(data)
		}
	}
}
