// mcadmin-console - interactive console client for mc-admin panels.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/BurntSushi/toml"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/xyqyear/mcadmin-console/internal/api"
	"github.com/xyqyear/mcadmin-console/internal/cli"
	"github.com/xyqyear/mcadmin-console/internal/config"
	"github.com/xyqyear/mcadmin-console/internal/console"
	"github.com/xyqyear/mcadmin-console/internal/history"
	"github.com/xyqyear/mcadmin-console/internal/ui/consoleview"
	"github.com/xyqyear/mcadmin-console/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.3.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference so controller callbacks, which fire on
// transport goroutines, can relay events onto the UI loop.
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

const apiTimeout = 15 * time.Second

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		cli.Fatal("%v", err)
	}

	switch args.Command {
	case cli.CmdConnect:
		runConsole(args)
	case cli.CmdServers:
		handleServers(args)
	case cli.CmdConfig:
		handleConfig(args)
	case cli.CmdHistory:
		handleHistory(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.Usage()
	}
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// loadConfig loads configuration, applies CLI overrides, and installs the
// result as the process-wide config.
func loadConfig(args cli.Args) *config.Config {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		cli.Fatal("%v", err)
	}
	if args.Panel != "" {
		cfg.Panel.URL = args.Panel
	}
	config.SetGlobal(cfg)
	return cfg
}

// panelClient builds an authenticated API client. A configured token skips
// the login flow entirely.
func panelClient(ctx context.Context, cfg *config.Config) (*api.Client, error) {
	client := api.NewClient(cfg.Panel.URL)
	if cfg.Panel.Token != "" {
		return client.WithToken(cfg.Panel.Token), nil
	}
	if cfg.Panel.Username == "" || cfg.Panel.Password == "" {
		return nil, fmt.Errorf("no credentials: set panel.token or panel.username/password (or MCADMIN_TOKEN)")
	}
	if err := client.Login(ctx, cfg.Panel.Username, cfg.Panel.Password); err != nil {
		if errors.Is(err, api.ErrAuthFailed) {
			return nil, fmt.Errorf("login rejected for %q: check credentials", cfg.Panel.Username)
		}
		return nil, err
	}
	return client, nil
}

// =============================================================================
// CONSOLE SESSION
// =============================================================================

func runConsole(args cli.Args) {
	cfg := loadConfig(args)

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		cli.Fatal("connect requires a terminal (try `mcadmin-console servers` for scripted use)")
	}

	serverID := args.Server
	if serverID == "" {
		serverID = cfg.Panel.DefaultServer
	}
	if serverID == "" {
		cli.Fatal("no server given and panel.default_server is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	client, err := panelClient(ctx, cfg)
	if err != nil {
		cli.Fatal("%v", err)
	}
	if err := client.CheckConsoleReady(ctx, serverID); err != nil {
		switch {
		case errors.Is(err, api.ErrServerNotFound):
			cli.Fatal("server %q not found on the panel", serverID)
		case errors.Is(err, api.ErrServerNotRunning):
			cli.Fatal("server %q is not running", serverID)
		default:
			cli.Fatal("%v", err)
		}
	}

	logger := debugLogger(cfg)

	hist := openHistory(ctx, cfg, logger)
	if hist != nil {
		defer hist.Close()
	}

	registry := console.NewRegistry(func(id string) *console.Controller {
		return console.NewController(console.Options{
			ServerID: id,
			Endpoint: func() (string, error) { return client.ConsoleURL(id) },
			Notify:   relayEvent,
			OnCommand: func(cmd string) {
				if hist != nil {
					appendCtx, appendCancel := context.WithTimeout(context.Background(), time.Second)
					defer appendCancel()
					if err := hist.Append(appendCtx, id, cmd); err != nil && logger != nil {
						logger.Printf("history append failed: %v", err)
					}
				}
			},
			Limiter:          commandLimiter(cfg),
			ErrorFramesFatal: cfg.Console.ErrorFramesFatal,
			FilterDefault:    cfg.Console.FilterRconDefault,
			Logger:           logger,
		})
	})
	defer registry.Shutdown()

	ctrl, _ := registry.Acquire(serverID)
	m := consoleview.New(ctrl, hist, styles.NewTheme(cfg.UI.Theme))

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	setProgram(p)
	defer setProgram(nil)

	if watcher := startConfigWatcher(args, logger); watcher != nil {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		cli.Fatal("%v", err)
	}
}

// relayEvent forwards a session event onto the UI loop. Safe to call
// before the program starts and after it exits.
func relayEvent(ev console.Event) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(consoleview.SessionEvent{Event: ev})
	}
}

func setProgram(p *tea.Program) {
	programMu.Lock()
	programRef = p
	programMu.Unlock()
}

func commandLimiter(cfg *config.Config) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(cfg.Console.CommandRateLimit), cfg.Console.CommandRateBurst)
}

// openHistory opens the command history store. A broken store degrades to
// a session without history rather than blocking the connect.
func openHistory(ctx context.Context, cfg *config.Config, logger *log.Logger) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	path, err := cfg.HistoryPath()
	if err == nil {
		err = config.EnsureConfigDir()
	}
	if err == nil {
		var store *history.Store
		if store, err = history.Open(ctx, path, cfg.History.MaxEntries); err == nil {
			return store
		}
	}
	if logger != nil {
		logger.Printf("history disabled: %v", err)
	}
	return nil
}

// debugLogger opens the configured diagnostics log, or returns nil.
func debugLogger(cfg *config.Config) *log.Logger {
	if cfg.UI.DebugLog == "" {
		return nil
	}
	f, err := os.OpenFile(cfg.UI.DebugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot open debug log: %v\n", err)
		return nil
	}
	return log.New(f, "", log.LstdFlags|log.Lmicroseconds)
}

// startConfigWatcher watches the default config file for edits made while
// the console is attached. Reloads only refresh the global config; the
// live session keeps its settings.
func startConfigWatcher(args cli.Args, logger *log.Logger) *config.Watcher {
	if args.ConfigPath != "" {
		return nil
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	w, err := config.NewWatcher(path, func(cfg *config.Config) {
		if logger != nil {
			logger.Printf("config reloaded from %s", path)
		}
	})
	if err != nil {
		return nil
	}
	if err := w.Watch(); err != nil {
		return nil
	}
	return w
}

// =============================================================================
// SERVERS COMMAND
// =============================================================================

func handleServers(args cli.Args) {
	cfg := loadConfig(args)

	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	client, err := panelClient(ctx, cfg)
	if err != nil {
		cli.Fatal("%v", err)
	}
	servers, err := client.ListServers(ctx)
	if err != nil {
		cli.Fatal("%v", err)
	}

	if args.JSON {
		printJSON(servers)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS")
	for _, s := range servers {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Name, s.Status)
	}
	w.Flush()
}

// =============================================================================
// CONFIG COMMAND
// =============================================================================

func handleConfig(args cli.Args) {
	cfg := loadConfig(args)

	switch args.Subcommand {
	case "", "show":
		if args.JSON {
			printJSON(cfg)
			return
		}
		if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
			cli.Fatal("%v", err)
		}
	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			cli.Fatal("%v", err)
		}
		fmt.Println(path)
	case "set":
		if len(args.Raw) != 2 {
			cli.Fatal("usage: mcadmin-console config set <key> <value>")
		}
		if err := setConfigValue(cfg, args.Raw[0], args.Raw[1]); err != nil {
			cli.Fatal("%v", err)
		}
		if err := cfg.Validate(); err != nil {
			cli.Fatal("%v", err)
		}
		if err := config.Save(cfg); err != nil {
			cli.Fatal("%v", err)
		}
		fmt.Printf("%s = %s\n", args.Raw[0], args.Raw[1])
	default:
		cli.Fatal("unknown config subcommand %q (want show, set, or path)", args.Subcommand)
	}
}

// setConfigValue assigns one dotted-key setting. Credentials are settable
// here deliberately so first-run setup never requires hand-editing TOML.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "panel.url":
		cfg.Panel.URL = value
	case "panel.username":
		cfg.Panel.Username = value
	case "panel.password":
		cfg.Panel.Password = value
	case "panel.token":
		cfg.Panel.Token = value
	case "panel.default_server":
		cfg.Panel.DefaultServer = value
	case "console.error_frames_fatal":
		return setBool(&cfg.Console.ErrorFramesFatal, key, value)
	case "console.command_rate_limit":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", key, value)
		}
		cfg.Console.CommandRateLimit = f
	case "console.command_rate_burst":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", key, value)
		}
		cfg.Console.CommandRateBurst = n
	case "console.filter_rcon_default":
		return setBool(&cfg.Console.FilterRconDefault, key, value)
	case "history.enabled":
		return setBool(&cfg.History.Enabled, key, value)
	case "history.path":
		cfg.History.Path = value
	case "history.max_entries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", key, value)
		}
		cfg.History.MaxEntries = n
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.debug_log":
		cfg.UI.DebugLog = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s: %q is not a boolean", key, value)
	}
	*dst = b
	return nil
}

// =============================================================================
// HISTORY COMMAND
// =============================================================================

func handleHistory(args cli.Args) {
	cfg := loadConfig(args)

	path, err := cfg.HistoryPath()
	if err != nil {
		cli.Fatal("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	store, err := history.Open(ctx, path, cfg.History.MaxEntries)
	if err != nil {
		cli.Fatal("cannot open history at %s: %v", path, err)
	}
	defer store.Close()

	if args.Subcommand == "clear" {
		if args.Server == "" {
			cli.Fatal("usage: mcadmin-console history clear <server>")
		}
		if err := store.Clear(ctx, args.Server); err != nil {
			cli.Fatal("%v", err)
		}
		fmt.Printf("history cleared for %s\n", args.Server)
		return
	}

	serverID := args.Server
	if serverID == "" {
		serverID = cfg.Panel.DefaultServer
	}
	if serverID == "" {
		cli.Fatal("no server given and panel.default_server is not set")
	}

	entries, err := store.Recent(ctx, serverID, 50)
	if err != nil {
		cli.Fatal("%v", err)
	}
	if args.JSON {
		printJSON(entries)
		return
	}
	// Oldest first, like a shell history listing.
	for i := len(entries) - 1; i >= 0; i-- {
		fmt.Println(entries[i])
	}
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		cli.Fatal("%v", err)
	}
	fmt.Println(string(data))
}
