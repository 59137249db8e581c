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

// CreateSuggestedEdit records a pending edit proposal. ID, status, and
// creation time are assigned here; the caller supplies the rest.
func (db *DB) CreateSuggestedEdit(edit models.SuggestedEdit) (*models.SuggestedEdit, error) {
	if _, err := db.GetNote(edit.NoteID); err != nil {
		return nil, err
	}

	edit.ID = uuid.NewString()
	edit.Status = models.EditPending
	edit.CreatedAt = time.Now()

	beforeJSON, err := json.Marshal(edit.Before)
	if err != nil {
		return nil, fmt.Errorf("store: marshal before snapshot: %w", err)
	}
	afterJSON, err := json.Marshal(edit.After)
	if err != nil {
		return nil, fmt.Errorf("store: marshal after snapshot: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO suggested_edits (id, note_id, session_id, edit_type, block_id, before_json, after_json, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, edit.ID, edit.NoteID, edit.SessionID, edit.EditType, edit.BlockID, string(beforeJSON), string(afterJSON), edit.Status, edit.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: insert suggested edit: %w", err)
	}
	return &edit, nil
}

// GetSuggestedEdit returns an edit by id.
func (db *DB) GetSuggestedEdit(id string) (*models.SuggestedEdit, error) {
	row := db.conn.QueryRow(`
		SELECT id, note_id, session_id, edit_type, block_id, before_json, after_json, status, created_at
		FROM suggested_edits WHERE id = ?
	`, id)
	return scanEdit(row)
}

// ListPendingEdits returns pending edits oldest first, filtered to one
// note when noteID is non-empty.
func (db *DB) ListPendingEdits(noteID string) ([]models.SuggestedEdit, error) {
	rows, err := db.conn.Query(`
		SELECT id, note_id, session_id, edit_type, block_id, before_json, after_json, status, created_at
		FROM suggested_edits WHERE status = ? AND (? = '' OR note_id = ?)
		ORDER BY created_at ASC
	`, models.EditPending, noteID, noteID)
	if err != nil {
		return nil, fmt.Errorf("store: list pending edits: %w", err)
	}
	defer rows.Close()

	var out []models.SuggestedEdit
	for rows.Next() {
		edit, err := scanEdit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *edit)
	}
	return out, rows.Err()
}

// AcceptSuggestedEdit applies the edit's after snapshot to the note and
// marks the edit accepted. Accepting a resolved edit fails with
// ErrResolved; both resolutions are terminal.
func (db *DB) AcceptSuggestedEdit(id string) error {
	edit, err := db.GetSuggestedEdit(id)
	if err != nil {
		return err
	}
	if edit.Status != models.EditPending {
		return apperr.ErrResolved
	}

	note, err := db.GetNote(edit.NoteID)
	if err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now()
	switch {
	case edit.EditType == models.EditUpdateTitle && edit.After.Title != "":
		if _, err := tx.Exec(`UPDATE notes SET title = ?, updated_at = ? WHERE id = ?`,
			edit.After.Title, now, note.ID); err != nil {
			return fmt.Errorf("store: apply title edit: %w", err)
		}
		if err := ftsSyncNote(tx, note.ID, edit.After.Title, blockmd.Flatten(note.Content)); err != nil {
			return err
		}
	case edit.After.Content != nil:
		title := edit.After.Title
		if title == "" {
			title = note.Title
		}
		contentJSON, err := json.Marshal(edit.After.Content)
		if err != nil {
			return fmt.Errorf("store: marshal content: %w", err)
		}
		if _, err := tx.Exec(`UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
			title, string(contentJSON), now, note.ID); err != nil {
			return fmt.Errorf("store: apply content edit: %w", err)
		}
		if err := syncBlocksTx(tx, note.ID, title, edit.After.Content); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`UPDATE suggested_edits SET status = ? WHERE id = ?`, models.EditAccepted, id); err != nil {
		return fmt.Errorf("store: mark edit accepted: %w", err)
	}
	return tx.Commit()
}

// RejectSuggestedEdit discards a pending edit, leaving the note untouched.
func (db *DB) RejectSuggestedEdit(id string) error {
	edit, err := db.GetSuggestedEdit(id)
	if err != nil {
		return err
	}
	if edit.Status != models.EditPending {
		return apperr.ErrResolved
	}
	_, err = db.conn.Exec(`UPDATE suggested_edits SET status = ? WHERE id = ?`, models.EditRejected, id)
	if err != nil {
		return fmt.Errorf("store: mark edit rejected: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEdit(s scanner) (*models.SuggestedEdit, error) {
	var edit models.SuggestedEdit
	var beforeJSON, afterJSON string
	err := s.Scan(&edit.ID, &edit.NoteID, &edit.SessionID, &edit.EditType, &edit.BlockID,
		&beforeJSON, &afterJSON, &edit.Status, &edit.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan suggested edit: %w", err)
	}
	if err := json.Unmarshal([]byte(beforeJSON), &edit.Before); err != nil {
		return nil, fmt.Errorf("store: unmarshal before snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(afterJSON), &edit.After); err != nil {
		return nil, fmt.Errorf("store: unmarshal after snapshot: %w", err)
	}
	return &edit, nil
}
