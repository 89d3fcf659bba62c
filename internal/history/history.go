// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists console command history per server in a local
// sqlite database and provides shell-style recall over it.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrClosed is returned after the store has been closed.
var ErrClosed = errors.New("history store closed")

const schema = `
CREATE TABLE IF NOT EXISTS commands (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	server_id  TEXT NOT NULL,
	command    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_commands_server ON commands(server_id, id);
`

// =============================================================================
// STORE
// =============================================================================

// Store is the sqlite-backed command history. One store serves every
// server; rows are scoped by server id.
type Store struct {
	db         *sql.DB
	maxEntries int
	closed     bool
}

// Open opens (creating if needed) the history database at path.
// maxEntries caps rows kept per server; zero means unlimited.
func Open(ctx context.Context, path string, maxEntries int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil && !errors.Is(err, os.ErrNotExist) {
		db.Close()
		return nil, fmt.Errorf("chmod history db: %w", err)
	}
	return &Store{db: db, maxEntries: maxEntries}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil || s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Append records one executed command. A command identical to the most
// recent entry for the same server is skipped, so hammering the same
// command doesn't flood recall.
func (s *Store) Append(ctx context.Context, serverID, command string) error {
	if s.closed {
		return ErrClosed
	}
	if command == "" {
		return nil
	}

	var last string
	err := s.db.QueryRowContext(ctx,
		`SELECT command FROM commands WHERE server_id = ? ORDER BY id DESC LIMIT 1`,
		serverID).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("query last command: %w", err)
	}
	if err == nil && last == command {
		return nil
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO commands(server_id, command, created_at) VALUES (?, ?, ?)`,
		serverID, command, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("insert command: %w", err)
	}
	return s.prune(ctx, serverID)
}

// Recent returns up to limit commands for a server, newest first.
func (s *Store) Recent(ctx context.Context, serverID string, limit int) ([]string, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT command FROM commands WHERE server_id = ? ORDER BY id DESC LIMIT ?`,
		serverID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var cmd string
		if err := rows.Scan(&cmd); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, cmd)
	}
	return out, rows.Err()
}

// Clear removes all history for a server.
func (s *Store) Clear(ctx context.Context, serverID string) error {
	if s.closed {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM commands WHERE server_id = ?`, serverID)
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// prune drops the oldest rows beyond the per-server cap.
func (s *Store) prune(ctx context.Context, serverID string) error {
	if s.maxEntries <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
DELETE FROM commands WHERE server_id = ? AND id NOT IN (
	SELECT id FROM commands WHERE server_id = ? ORDER BY id DESC LIMIT ?
)`, serverID, serverID, s.maxEntries)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}

// =============================================================================
// RECALL CURSOR
// =============================================================================

// Recall walks a snapshot of history the way a shell does: Up moves to
// older entries, Down back toward the live (in-progress) line. The
// snapshot is taken when the cursor is created so concurrent appends
// don't shift entries under the user.
type Recall struct {
	entries []string // newest first
	pos     int      // -1 = live line
	live    string
}

// NewRecall creates a cursor over entries (newest first).
func NewRecall(entries []string) *Recall {
	return &Recall{entries: entries, pos: -1}
}

// Up moves to the next older entry and returns it. The current live line
// is stashed on the first Up so Down can restore it. Returns ok=false at
// the oldest entry.
func (r *Recall) Up(current string) (string, bool) {
	if len(r.entries) == 0 || r.pos >= len(r.entries)-1 {
		return "", false
	}
	if r.pos == -1 {
		r.live = current
	}
	r.pos++
	return r.entries[r.pos], true
}

// Down moves back toward the live line. Returns the stashed live line
// when the cursor leaves history. ok=false when already on the live line.
func (r *Recall) Down() (string, bool) {
	if r.pos == -1 {
		return "", false
	}
	r.pos--
	if r.pos == -1 {
		return r.live, true
	}
	return r.entries[r.pos], true
}

// Reset returns the cursor to the live line without restoring it.
func (r *Recall) Reset() {
	r.pos = -1
	r.live = ""
}
