package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/grove/internal/apperr"
	"github.com/starford/grove/internal/models"
)

// CreateFolder inserts a folder, optionally under a parent.
func (db *DB) CreateFolder(name, parentID string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("store: folder name is required")
	}
	if parentID != "" {
		if _, err := db.GetFolder(parentID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	f := &models.Folder{
		ID:        uuid.NewString(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := db.conn.Exec(`
		INSERT INTO folders (id, name, parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, f.ID, f.Name, f.ParentID, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: insert folder: %w", err)
	}
	return f, nil
}

// GetFolder returns a folder by id.
func (db *DB) GetFolder(id string) (*models.Folder, error) {
	var f models.Folder
	err := db.conn.QueryRow(`
		SELECT id, name, parent_id, created_at, updated_at FROM folders WHERE id = ?
	`, id).Scan(&f.ID, &f.Name, &f.ParentID, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get folder: %w", err)
	}
	return &f, nil
}

// ListFolders returns all folders in creation order.
func (db *DB) ListFolders() ([]models.Folder, error) {
	rows, err := db.conn.Query(`SELECT id, name, parent_id, created_at, updated_at FROM folders ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list folders: %w", err)
	}
	defer rows.Close()

	var out []models.Folder
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.ParentID, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// RenameFolder updates a folder's name.
func (db *DB) RenameFolder(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("store: folder name is required")
	}
	res, err := db.conn.Exec(`UPDATE folders SET name = ?, updated_at = ? WHERE id = ?`, name, time.Now(), id)
	if err != nil {
		return fmt.Errorf("store: rename folder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteFolder removes a folder. Its notes become unfiled and its child
// folders are reparented to the deleted folder's parent; notes are never
// deleted with their folder.
func (db *DB) DeleteFolder(id string) error {
	folder, err := db.GetFolder(id)
	if err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now()
	if _, err := tx.Exec(`UPDATE notes SET folder_id = '', updated_at = ? WHERE folder_id = ?`, now, id); err != nil {
		return fmt.Errorf("store: unfile notes: %w", err)
	}
	if _, err := tx.Exec(`UPDATE folders SET parent_id = ?, updated_at = ? WHERE parent_id = ?`, folder.ParentID, now, id); err != nil {
		return fmt.Errorf("store: reparent folders: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM folders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete folder: %w", err)
	}

	return tx.Commit()
}
