//go:build !sqlite_fts5

package store

import (
	"database/sql"
	"fmt"

	"github.com/starford/grove/internal/blockmd"
	"github.com/starford/grove/internal/models"
)

const (
	searchBlockLimit = 15
	searchTitleLimit = 5
)

func initFTS(_ *sql.DB) error {
	// FTS5 not compiled in; search falls back to LIKE over the blocks and
	// notes tables.
	return nil
}

func ftsSyncNote(_ *sql.Tx, _, _ string, _ []blockmd.FlatBlock) error {
	// Block text already lives in the blocks table; nothing extra to do.
	return nil
}

func ftsDeleteNote(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled
// in), preserving the content-then-title result shape.
func (db *DB) Search(query string) ([]models.SearchHit, error) {
	like := "%" + query + "%"

	rows, err := db.conn.Query(`
		SELECT b.note_id, n.title, b.block_id, b.type, b.text
		FROM blocks b
		JOIN notes n ON n.id = b.note_id
		WHERE b.text LIKE ?
		ORDER BY b.note_id, b.ord
		LIMIT ?
	`, like, searchBlockLimit)
	if err != nil {
		return nil, fmt.Errorf("store: search blocks: %w", err)
	}
	defer rows.Close()

	var hits []models.SearchHit
	covered := make(map[string]struct{})
	for rows.Next() {
		h := models.SearchHit{MatchedOn: "content"}
		if err := rows.Scan(&h.NoteID, &h.NoteTitle, &h.BlockID, &h.Type, &h.Text); err != nil {
			return nil, err
		}
		covered[h.NoteID] = struct{}{}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	titleRows, err := db.conn.Query(`
		SELECT id, title FROM notes WHERE title LIKE ? LIMIT ?
	`, like, searchTitleLimit)
	if err != nil {
		return nil, fmt.Errorf("store: search titles: %w", err)
	}
	defer titleRows.Close()

	for titleRows.Next() {
		var noteID, title string
		if err := titleRows.Scan(&noteID, &title); err != nil {
			return nil, err
		}
		if _, ok := covered[noteID]; ok {
			continue
		}
		hits = append(hits, models.SearchHit{
			NoteID:    noteID,
			NoteTitle: title,
			Text:      title,
			Type:      "title",
			MatchedOn: "title",
		})
	}
	return hits, titleRows.Err()
}
