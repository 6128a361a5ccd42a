// Package history is the durable, session-scoped append-only message log.
// It is best-effort observability for the conversation, not the system of
// record for security decisions: callers log failures and continue.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Message roles. The generator maps them onto its own chat roles.
const (
	RoleHuman = "human"
	RoleAI    = "ai"
)

// Message is one immutable entry in a session's log.
type Message struct {
	ID        int64
	SessionID string
	Role      string
	Content   string
	Timestamp time.Time
}

// Store is the SQLite-backed message log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the message log at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS message_history (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		timestamp  TEXT NOT NULL DEFAULT (datetime('now'))
	);
	CREATE INDEX IF NOT EXISTS idx_message_session ON message_history (session_id, id)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append durably writes one message to the session's log.
func (s *Store) Append(ctx context.Context, sessionID, role, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO message_history (session_id, role, content, timestamp) VALUES (?, ?, ?, ?)`,
		sessionID, role, content, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

// List returns the session's messages in insertion order.
func (s *Store) List(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, timestamp
		 FROM message_history WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var ts string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &ts); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		m.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Clear removes only the given session's messages.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM message_history WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	return nil
}
