package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Message is one turn of a conversation as stored on disk.
type Message struct {
	ID        int64
	Session   string
	Role      string // "user" or "assistant"
	Content   string
	CreatedAt time.Time
}

// Store persists conversation history in SQLite so the assistant keeps its
// short-term memory across restarts.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session, id);
`

// Open creates the database file (and parent directory) if needed and
// prepares the schema.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append records one message at the end of a session's history.
func (s *Store) Append(ctx context.Context, session, role, content string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (session, role, content, created_at) VALUES (?, ?, ?, ?)",
		session, role, content, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// Recent returns up to limit messages of a session in chronological order.
func (s *Store) Recent(ctx context.Context, session string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session, role, content, created_at
		 FROM (SELECT * FROM messages WHERE session = ? ORDER BY id DESC LIMIT ?)
		 ORDER BY id ASC`,
		session, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.Session, &m.Role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = time.UnixMilli(createdAt)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Count reports how many messages a session holds.
func (s *Store) Count(ctx context.Context, session string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages WHERE session = ?", session).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// Prune drops everything but the newest keep messages of a session.
func (s *Store) Prune(ctx context.Context, session string, keep int) error {
	if keep < 0 {
		keep = 0
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE session = ? AND id NOT IN
		 (SELECT id FROM messages WHERE session = ? ORDER BY id DESC LIMIT ?)`,
		session, session, keep)
	if err != nil {
		return fmt.Errorf("prune messages: %w", err)
	}
	return nil
}
