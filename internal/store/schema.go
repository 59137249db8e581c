// Package store provides the SQLite-backed document store for notes,
// folders, conversations, transcripts, and suggested edits, with optional
// FTS5 full-text search over block content.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL DEFAULT '',
	content        TEXT NOT NULL DEFAULT '[]',
	managed_by     TEXT NOT NULL DEFAULT 'ai',
	source_url     TEXT NOT NULL DEFAULT '',
	folder_id      TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL,
	last_tagged_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_notes_updated_at ON notes(updated_at);
CREATE INDEX IF NOT EXISTS idx_notes_folder_id ON notes(folder_id);

CREATE TABLE IF NOT EXISTS blocks (
	note_id   TEXT NOT NULL,
	block_id  TEXT NOT NULL,
	type      TEXT NOT NULL DEFAULT 'paragraph',
	parent_id TEXT NOT NULL DEFAULT '',
	ord       REAL NOT NULL DEFAULT 0,
	text      TEXT NOT NULL DEFAULT '',
	UNIQUE(note_id, block_id)
);

CREATE INDEX IF NOT EXISTS idx_blocks_note_id ON blocks(note_id);

CREATE TABLE IF NOT EXISTS folders (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	parent_id  TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_folders_parent_id ON folders(parent_id);

CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT 'New conversation',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	thinking   TEXT NOT NULL DEFAULT '',
	tool_calls TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id, created_at);

CREATE TABLE IF NOT EXISTS suggested_edits (
	id          TEXT PRIMARY KEY,
	note_id     TEXT NOT NULL,
	session_id  TEXT NOT NULL DEFAULT '',
	edit_type   TEXT NOT NULL,
	block_id    TEXT NOT NULL DEFAULT '',
	before_json TEXT NOT NULL DEFAULT '{}',
	after_json  TEXT NOT NULL DEFAULT '{}',
	status      TEXT NOT NULL DEFAULT 'pending',
	created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_edits_note_id ON suggested_edits(note_id);
CREATE INDEX IF NOT EXISTS idx_edits_status ON suggested_edits(status);
`

// DB wraps a sql.DB with document-store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
