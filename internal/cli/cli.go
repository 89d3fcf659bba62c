// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for mcadmin-console.
package cli

import (
	"fmt"
	"os"
	"runtime"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.3.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	// CmdConnect attaches an interactive console to a server (default).
	CmdConnect Command = iota
	// CmdServers lists the panel's server inventory.
	CmdServers
	// CmdConfig shows or edits configuration.
	CmdConfig
	// CmdHistory shows or clears stored command history.
	CmdHistory
	// CmdVersion prints version information.
	CmdVersion
	// CmdHelp prints usage.
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	Command Command

	// Server is the target server id for connect/history.
	Server string

	// ConfigPath overrides the config file location.
	ConfigPath string

	// Panel overrides panel.url for this invocation.
	Panel string

	// Subcommand is the first positional after the command, e.g.
	// "show"/"set" for config, "clear" for history.
	Subcommand string

	// Raw holds the remaining positional arguments.
	Raw []string

	// JSON switches list output to JSON.
	JSON bool
}

const usageText = `mcadmin-console - interactive console client for mc-admin panels

Attach a terminal to a game server's console over the panel's websocket
endpoint, with automatic reconnection and persistent command history.

Usage:
  mcadmin-console [connect] [server]     Attach a console (default command)
  mcadmin-console servers                List servers on the panel
  mcadmin-console config [show|set k v|path]  Configuration
  mcadmin-console history [server]       Show stored command history
  mcadmin-console history clear <server> Clear history for a server
  mcadmin-console version                Print version
  mcadmin-console help                   Show this help

Flags:
  --panel URL     Panel base URL (overrides config)
  --config PATH   Config file path
  --json          JSON output for servers/history

Environment:
  MCADMIN_PANEL_URL, MCADMIN_USERNAME, MCADMIN_PASSWORD, MCADMIN_TOKEN,
  MCADMIN_SERVER, MCADMIN_THEME, MCADMIN_DEBUG_LOG

Keys (in console):
  Enter   submit command        Esc     cancel input line
  C-f     toggle rcon filter    C-r     refresh buffer
  Up/Down command history       PgUp/Dn scroll transcript
  C-o     reconnect             C-q     quit
`

// Usage prints the usage text.
func Usage() {
	fmt.Print(usageText)
}

// PrintVersion prints version details.
func PrintVersion() {
	fmt.Printf("mcadmin-console %s (%s, built %s, %s/%s)\n",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// Parse parses os.Args-style arguments (without the program name).
func Parse(raw []string) (Args, error) {
	p := NewArgParser(raw)
	args := Args{
		Panel:      p.Flag("panel"),
		ConfigPath: p.Flag("config"),
		JSON:       p.BoolFlag("json"),
	}

	// Dash forms never reach the positional switch: the parser consumes
	// every leading-dash token as a flag.
	if p.BoolFlag("version") || p.BoolFlag("v") {
		args.Command = CmdVersion
		return args, nil
	}
	if p.BoolFlag("help") || p.BoolFlag("h") {
		args.Command = CmdHelp
		return args, nil
	}

	pos := p.Positional()
	if len(pos) == 0 {
		args.Command = CmdConnect
		return args, nil
	}

	switch pos[0] {
	case "connect", "c":
		args.Command = CmdConnect
		if len(pos) > 1 {
			args.Server = pos[1]
		}
	case "servers", "ls":
		args.Command = CmdServers
	case "config":
		args.Command = CmdConfig
		if len(pos) > 1 {
			args.Subcommand = pos[1]
			args.Raw = pos[2:]
		}
	case "history":
		args.Command = CmdHistory
		if len(pos) > 1 {
			if pos[1] == "clear" {
				args.Subcommand = "clear"
				if len(pos) > 2 {
					args.Server = pos[2]
				}
			} else {
				args.Server = pos[1]
			}
		}
	case "version":
		args.Command = CmdVersion
	case "help":
		args.Command = CmdHelp
	default:
		// Bare server id: treat as connect target.
		args.Command = CmdConnect
		args.Server = pos[0]
	}
	return args, nil
}

// Fatal prints an error and exits non-zero.
func Fatal(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "mcadmin-console: "+format+"\n", a...)
	os.Exit(1)
}
