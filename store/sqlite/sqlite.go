// Package sqlite provides a durable core.PersistenceStore over a local
// SQLite database. WAL mode is enabled for concurrent reads and the schema
// is managed through a versioned migration table, so opening an existing
// database is always safe.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/agentcrew/core"
	_ "modernc.org/sqlite"
)

const migrationV1Sessions = `
CREATE TABLE IF NOT EXISTS conversation_sessions (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	message_count INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'active'
);
`

const migrationV2Messages = `
CREATE TABLE IF NOT EXISTS conversation_messages (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	role TEXT NOT NULL CHECK (role IN ('user', 'agent')),
	content TEXT NOT NULL,
	message_order INTEGER NOT NULL,
	timestamp DATETIME NOT NULL,
	FOREIGN KEY (session_id) REFERENCES conversation_sessions(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_messages_session_order
	ON conversation_messages(session_id, message_order);
`

// Store implements core.PersistenceStore over modernc.org/sqlite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path, enables WAL mode and
// foreign keys, and applies pending migrations. Parent directories are
// created as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// migrate applies all pending schema migrations.
func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Sessions},
		{2, migrationV2Messages},
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}
	return nil
}

// SaveSession inserts or updates the session metadata row.
func (s *Store) SaveSession(ctx context.Context, rec core.SessionRecord) error {
	now := time.Now().UTC()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}
	status := rec.Status
	if status == "" {
		status = "active"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_sessions (id, name, created_at, updated_at, message_count, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at,
			message_count = excluded.message_count,
			status = excluded.status
	`, rec.ID, rec.Name, createdAt, updatedAt, rec.MessageCount, status)
	if err != nil {
		return fmt.Errorf("save session %s: %w", rec.ID, err)
	}
	return nil
}

// LoadSession reads the session metadata row or returns a typed
// *core.SessionNotFoundError.
func (s *Store) LoadSession(ctx context.Context, sessionID string) (core.SessionRecord, error) {
	var rec core.SessionRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at, message_count, status
		FROM conversation_sessions WHERE id = ?
	`, sessionID).Scan(&rec.ID, &rec.Name, &rec.CreatedAt, &rec.UpdatedAt, &rec.MessageCount, &rec.Status)
	if err == sql.ErrNoRows {
		return core.SessionRecord{}, &core.SessionNotFoundError{SessionID: sessionID}
	}
	if err != nil {
		return core.SessionRecord{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return rec, nil
}

// SaveMessage appends a message row, creating the session row on first use
// and keeping its message count and update time current.
func (s *Store) SaveMessage(ctx context.Context, sessionID string, msg core.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO conversation_sessions (id, created_at, updated_at, message_count, status)
		VALUES (?, ?, ?, 0, 'active')
		ON CONFLICT(id) DO NOTHING
	`, sessionID, now, now); err != nil {
		return fmt.Errorf("ensure session %s: %w", sessionID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO conversation_messages (id, session_id, role, content, message_order, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), sessionID, string(msg.Role), msg.Content, msg.Order, msg.Timestamp.UTC()); err != nil {
		return fmt.Errorf("save message: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE conversation_sessions
		SET message_count = message_count + 1, updated_at = ?
		WHERE id = ?
	`, now, sessionID); err != nil {
		return fmt.Errorf("update session %s: %w", sessionID, err)
	}

	return tx.Commit()
}

// LoadMessages returns all messages for the session ordered by message
// order. An unknown session yields an empty slice, matching the
// write-through restore path.
func (s *Store) LoadMessages(ctx context.Context, sessionID string) ([]core.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, message_order, timestamp
		FROM conversation_messages
		WHERE session_id = ?
		ORDER BY message_order ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load messages for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var out []core.Message
	for rows.Next() {
		var (
			msg  core.Message
			role string
		)
		if err := rows.Scan(&role, &msg.Content, &msg.Order, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = core.Role(role)
		out = append(out, msg)
	}
	return out, rows.Err()
}

// DeleteSession removes the session row; messages cascade.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM conversation_sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// compile-time interface check
var _ core.PersistenceStore = (*Store)(nil)
