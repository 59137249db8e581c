package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/grove/internal/apperr"
	"github.com/starford/grove/internal/blockmd"
	"github.com/starford/grove/internal/models"
)

// CreateNoteParams holds the fields for creating a note. Zero values mean
// "not set": empty ManagedBy defaults to "ai", empty Content to a single
// empty paragraph.
type CreateNoteParams struct {
	Title     string
	Content   []models.Block
	ManagedBy string
	SourceURL string
	FolderID  string
}

// CreateNote inserts a new note and its block read-model rows.
func (db *DB) CreateNote(p CreateNoteParams) (*models.Note, error) {
	if p.ManagedBy == "" {
		p.ManagedBy = models.ManagedByAI
	}
	if len(p.Content) == 0 {
		p.Content = []models.Block{blockmd.NewBlock(models.BlockParagraph, "", models.BlockProps{})}
	}
	if p.FolderID != "" {
		if _, err := db.GetFolder(p.FolderID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	note := &models.Note{
		ID:        uuid.NewString(),
		Title:     p.Title,
		Content:   p.Content,
		ManagedBy: p.ManagedBy,
		SourceURL: p.SourceURL,
		FolderID:  p.FolderID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	contentJSON, err := json.Marshal(note.Content)
	if err != nil {
		return nil, fmt.Errorf("store: marshal content: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO notes (id, title, content, managed_by, source_url, folder_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, note.ID, note.Title, string(contentJSON), note.ManagedBy, note.SourceURL, note.FolderID, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: insert note: %w", err)
	}
	if err := syncBlocksTx(tx, note.ID, note.Title, note.Content); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return note, nil
}

// GetNote returns a note by id. ManagedBy is normalized so callers never
// observe an empty value.
func (db *DB) GetNote(id string) (*models.Note, error) {
	row := db.conn.QueryRow(`
		SELECT id, title, content, managed_by, source_url, folder_id, created_at, updated_at, last_tagged_at
		FROM notes WHERE id = ?
	`, id)

	var n models.Note
	var contentJSON, managedBy string
	var lastTagged sql.NullTime
	err := row.Scan(&n.ID, &n.Title, &contentJSON, &managedBy, &n.SourceURL, &n.FolderID, &n.CreatedAt, &n.UpdatedAt, &lastTagged)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get note: %w", err)
	}
	n.ManagedBy = normalizeManagedBy(managedBy)
	if lastTagged.Valid {
		n.LastTaggedAt = lastTagged.Time
	}
	if err := json.Unmarshal([]byte(contentJSON), &n.Content); err != nil {
		// Malformed stored content degrades to an empty document.
		n.Content = nil
	}
	return &n, nil
}

// ListNotes returns all notes (without content) newest-updated first.
func (db *DB) ListNotes() ([]models.NoteListItem, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, managed_by, folder_id, updated_at
		FROM notes ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	var out []models.NoteListItem
	for rows.Next() {
		var item models.NoteListItem
		var managedBy string
		if err := rows.Scan(&item.ID, &item.Title, &managedBy, &item.FolderID, &item.UpdatedAt); err != nil {
			return nil, err
		}
		item.ManagedBy = normalizeManagedBy(managedBy)
		out = append(out, item)
	}
	return out, rows.Err()
}

// UpdateNoteContent replaces a note's content and optionally its title
// (empty title keeps the existing one), resyncing the block read model in
// the same transaction.
func (db *DB) UpdateNoteContent(id string, content []models.Block, title string) error {
	note, err := db.GetNote(id)
	if err != nil {
		return err
	}
	if title == "" {
		title = note.Title
	}

	contentJSON, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("store: marshal content: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		title, string(contentJSON), time.Now(), id)
	if err != nil {
		return fmt.Errorf("store: update note: %w", err)
	}
	if err := syncBlocksTx(tx, id, title, content); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateNoteTitle renames a note without touching its content blocks.
func (db *DB) UpdateNoteTitle(id, title string) error {
	note, err := db.GetNote(id)
	if err != nil {
		return err
	}
	return db.UpdateNoteContent(id, note.Content, title)
}

// DeleteNote removes a note, its block rows, its search entries, and any
// suggested edits targeting it.
func (db *DB) DeleteNote(id string) error {
	if _, err := db.GetNote(id); err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDeleteNote(tx, id)
	_, _ = tx.Exec(`DELETE FROM blocks WHERE note_id = ?`, id)
	_, _ = tx.Exec(`DELETE FROM suggested_edits WHERE note_id = ?`, id)
	_, _ = tx.Exec(`DELETE FROM notes WHERE id = ?`, id)

	return tx.Commit()
}

// SetNoteFolder moves a note into a folder, or unfiles it when folderID is
// empty.
func (db *DB) SetNoteFolder(noteID, folderID string) error {
	if _, err := db.GetNote(noteID); err != nil {
		return err
	}
	if folderID != "" {
		if _, err := db.GetFolder(folderID); err != nil {
			return err
		}
	}
	_, err := db.conn.Exec(`UPDATE notes SET folder_id = ?, updated_at = ? WHERE id = ?`,
		folderID, time.Now(), noteID)
	if err != nil {
		return fmt.Errorf("store: set note folder: %w", err)
	}
	return nil
}

// syncBlocksTx replaces the denormalized block rows and search entries for
// a note within an open transaction.
func syncBlocksTx(tx *sql.Tx, noteID, title string, content []models.Block) error {
	_, _ = tx.Exec(`DELETE FROM blocks WHERE note_id = ?`, noteID)

	flat := blockmd.Flatten(content)
	if len(flat) > 0 {
		stmt, err := tx.Prepare(`INSERT OR REPLACE INTO blocks (note_id, block_id, type, parent_id, ord, text) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("store: prepare block insert: %w", err)
		}
		defer stmt.Close()
		for _, b := range flat {
			if _, err := stmt.Exec(noteID, b.BlockID, b.Type, b.ParentID, b.Order, b.Text); err != nil {
				return fmt.Errorf("store: insert block: %w", err)
			}
		}
	}

	return ftsSyncNote(tx, noteID, title, flat)
}

func normalizeManagedBy(v string) string {
	if v == models.ManagedByUser {
		return models.ManagedByUser
	}
	return models.ManagedByAI
}
