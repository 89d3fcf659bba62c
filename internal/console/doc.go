// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package console implements the interactive console session core: the
// websocket transport, the reconnection state machine with bounded
// exponential backoff, the transcript buffer, the input line editor, and
// the per-server session registry.
//
// The Controller is the single owner of a session. All entry points
// serialize on one mutex and every transport callback carries the
// generation of the attempt that produced it, so events from a superseded
// connection can never corrupt the current one.
//
// Silence on a healthy-looking connection is not detected: there is no
// application-level heartbeat, and a half-open TCP connection is only
// noticed when a write fails or the OS gives up on the socket.
package console
