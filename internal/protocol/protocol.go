// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol implements the console wire envelope.
//
// Frames travel over the websocket as JSON objects with a "type"
// discriminator. Outbound and Inbound are closed tagged unions: the codec
// switches exhaustively over their variants, so adding a frame kind without
// handling it is a compile-time error on the encode side and an
// ErrUnknownFrame on the decode side.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrMalformedFrame indicates a frame that is not valid JSON or lacks a
	// type discriminator. Callers log and drop these; they are never treated
	// as transport failures.
	ErrMalformedFrame = errors.New("malformed console frame")

	// ErrUnknownFrame indicates a syntactically valid frame whose type is not
	// part of the protocol.
	ErrUnknownFrame = errors.New("unknown console frame type")
)

// =============================================================================
// OUTBOUND FRAMES (client -> server)
// =============================================================================

// Outbound is the closed union of client-to-server frames.
type Outbound interface {
	outbound()
}

// Command submits one complete command line for execution.
type Command struct {
	Text string
}

// SetFilter toggles server-side RCON filtering of the log stream.
type SetFilter struct {
	Enabled bool
}

// RefreshLogs asks the server to re-send the full filtered log buffer.
type RefreshLogs struct{}

// Resize reports the client terminal dimensions.
type Resize struct {
	Cols int
	Rows int
}

func (Command) outbound()     {}
func (SetFilter) outbound()   {}
func (RefreshLogs) outbound() {}
func (Resize) outbound()      {}

// =============================================================================
// INBOUND FRAMES (server -> client)
// =============================================================================

// Inbound is the closed union of server-to-client frames.
type Inbound interface {
	inbound()
}

// Log carries an incremental chunk of console output; appended verbatim.
type Log struct {
	Content string
}

// LogsRefreshed carries the full authoritative log buffer; the client
// transcript is replaced, never merged.
type LogsRefreshed struct {
	Content string
}

// CommandResult echoes an executed command together with its result.
type CommandResult struct {
	Command string
	Result  string
}

// ErrorFrame is a server-reported error message.
type ErrorFrame struct {
	Message string
}

// Info is a server-reported informational message.
type Info struct {
	Message string
}

// FilterUpdated acknowledges a filter change; it never carries log content.
type FilterUpdated struct {
	Enabled bool
}

func (Log) inbound()           {}
func (LogsRefreshed) inbound() {}
func (CommandResult) inbound() {}
func (ErrorFrame) inbound()    {}
func (Info) inbound()          {}
func (FilterUpdated) inbound() {}

// =============================================================================
// WIRE ENVELOPE
// =============================================================================

// envelope is the superset of all frame fields keyed by the discriminator.
// Pointer fields distinguish "absent" from zero values on decode.
type envelope struct {
	Type       string  `json:"type"`
	Command    *string `json:"command,omitempty"`
	Result     *string `json:"result,omitempty"`
	Content    *string `json:"content,omitempty"`
	Message    *string `json:"message,omitempty"`
	FilterRCON *bool   `json:"filter_rcon,omitempty"`
	Cols       *int    `json:"cols,omitempty"`
	Rows       *int    `json:"rows,omitempty"`
}

// Frame type discriminator values.
const (
	typeCommand       = "command"
	typeSetFilter     = "set_filter"
	typeRefreshLogs   = "refresh_logs"
	typeResize        = "resize"
	typeLog           = "log"
	typeLogsRefreshed = "logs_refreshed"
	typeCommandResult = "command_result"
	typeError         = "error"
	typeInfo          = "info"
	typeFilterUpdated = "filter_updated"
)

// EncodeOutbound marshals an outbound frame to its wire form.
func EncodeOutbound(m Outbound) ([]byte, error) {
	var env envelope
	switch f := m.(type) {
	case Command:
		env.Type = typeCommand
		env.Command = &f.Text
	case SetFilter:
		env.Type = typeSetFilter
		env.FilterRCON = &f.Enabled
	case RefreshLogs:
		env.Type = typeRefreshLogs
	case Resize:
		env.Type = typeResize
		env.Cols = &f.Cols
		env.Rows = &f.Rows
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownFrame, m)
	}
	return json.Marshal(env)
}

// DecodeInbound parses a server frame. Malformed payloads yield
// ErrMalformedFrame; recognized-but-incomplete frames do too, so a server
// bug never surfaces as a half-filled message.
func DecodeInbound(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}

	switch env.Type {
	case typeLog:
		if env.Content == nil {
			return nil, fmt.Errorf("%w: log without content", ErrMalformedFrame)
		}
		return Log{Content: *env.Content}, nil
	case typeLogsRefreshed:
		if env.Content == nil {
			return nil, fmt.Errorf("%w: logs_refreshed without content", ErrMalformedFrame)
		}
		return LogsRefreshed{Content: *env.Content}, nil
	case typeCommandResult:
		if env.Command == nil || env.Result == nil {
			return nil, fmt.Errorf("%w: command_result without command/result", ErrMalformedFrame)
		}
		return CommandResult{Command: *env.Command, Result: *env.Result}, nil
	case typeError:
		if env.Message == nil {
			return nil, fmt.Errorf("%w: error without message", ErrMalformedFrame)
		}
		return ErrorFrame{Message: *env.Message}, nil
	case typeInfo:
		if env.Message == nil {
			return nil, fmt.Errorf("%w: info without message", ErrMalformedFrame)
		}
		return Info{Message: *env.Message}, nil
	case typeFilterUpdated:
		if env.FilterRCON == nil {
			return nil, fmt.Errorf("%w: filter_updated without filter_rcon", ErrMalformedFrame)
		}
		return FilterUpdated{Enabled: *env.FilterRCON}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrame, env.Type)
	}
}
