//go:build sqlite_fts5

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

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS blocks_fts USING fts5(
			note_id UNINDEXED,
			block_id UNINDEXED,
			type UNINDEXED,
			text,
			tokenize = 'unicode61 remove_diacritics 2'
		);
		CREATE VIRTUAL TABLE IF NOT EXISTS titles_fts USING fts5(
			note_id UNINDEXED,
			title,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsSyncNote(tx *sql.Tx, noteID, title string, flat []blockmd.FlatBlock) error {
	_, _ = tx.Exec(`DELETE FROM blocks_fts WHERE note_id = ?`, noteID)
	_, _ = tx.Exec(`DELETE FROM titles_fts WHERE note_id = ?`, noteID)

	for _, b := range flat {
		if b.Text == "" {
			continue
		}
		if _, err := tx.Exec(`INSERT INTO blocks_fts (note_id, block_id, type, text) VALUES (?, ?, ?, ?)`,
			noteID, b.BlockID, b.Type, b.Text); err != nil {
			return fmt.Errorf("store: upsert block fts: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO titles_fts (note_id, title) VALUES (?, ?)`, noteID, title); err != nil {
		return fmt.Errorf("store: upsert title fts: %w", err)
	}
	return nil
}

func ftsDeleteNote(tx *sql.Tx, noteID string) {
	_, _ = tx.Exec(`DELETE FROM blocks_fts WHERE note_id = ?`, noteID)
	_, _ = tx.Exec(`DELETE FROM titles_fts WHERE note_id = ?`, noteID)
}

// Search runs FTS5 queries over block text and note titles, deduplicating
// title hits for notes already surfaced by content matches.
func (db *DB) Search(query string) ([]models.SearchHit, error) {
	rows, err := db.conn.Query(`
		SELECT f.note_id, n.title, f.block_id, f.type, f.text
		FROM blocks_fts f
		JOIN notes n ON n.id = f.note_id
		WHERE blocks_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, searchBlockLimit)
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
		SELECT note_id, title
		FROM titles_fts
		WHERE titles_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, searchTitleLimit)
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
