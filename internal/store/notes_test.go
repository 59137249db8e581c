package store

import (
	"errors"
	"os"
	"testing"

	"github.com/starford/grove/internal/apperr"
	"github.com/starford/grove/internal/blockmd"
	"github.com/starford/grove/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "grove-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateNoteDefaults(t *testing.T) {
	db := testDB(t)
	note, err := db.CreateNote(CreateNoteParams{Title: "Blank"})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if note.ManagedBy != models.ManagedByAI {
		t.Errorf("managedBy = %q, want ai default", note.ManagedBy)
	}
	if len(note.Content) != 1 || note.Content[0].Type != models.BlockParagraph {
		t.Errorf("content = %+v, want single empty paragraph", note.Content)
	}
	if note.ID == "" || note.CreatedAt.IsZero() {
		t.Errorf("note = %+v", note)
	}
}

func TestGetNoteRoundTrip(t *testing.T) {
	db := testDB(t)
	content := blockmd.ToBlocks("# Plans\n- [x] ship it")
	created, err := db.CreateNote(CreateNoteParams{
		Title:     "Plans",
		Content:   content,
		ManagedBy: models.ManagedByUser,
		SourceURL: "https://example.com/plans",
	})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	got, err := db.GetNote(created.ID)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Title != "Plans" || got.ManagedBy != models.ManagedByUser || got.SourceURL != "https://example.com/plans" {
		t.Errorf("note = %+v", got)
	}
	if blockmd.ToMarkdown(got.Content) != "# Plans\n\n- [x] ship it" {
		t.Errorf("content = %q", blockmd.ToMarkdown(got.Content))
	}
}

func TestGetNoteNormalizesManagedBy(t *testing.T) {
	db := testDB(t)
	note, err := db.CreateNote(CreateNoteParams{Title: "Legacy"})
	if err != nil {
		t.Fatal(err)
	}
	// Simulate a row written before ownership existed.
	if _, err := db.conn.Exec(`UPDATE notes SET managed_by = '' WHERE id = ?`, note.ID); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetNote(note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ManagedBy != models.ManagedByAI {
		t.Errorf("managedBy = %q, want normalized to ai", got.ManagedBy)
	}
}

func TestGetNoteNotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetNote("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateNoteContentKeepsTitleWhenEmpty(t *testing.T) {
	db := testDB(t)
	note, err := db.CreateNote(CreateNoteParams{Title: "Keep Me"})
	if err != nil {
		t.Fatal(err)
	}

	if err := db.UpdateNoteContent(note.ID, blockmd.ToBlocks("new body"), ""); err != nil {
		t.Fatalf("UpdateNoteContent: %v", err)
	}
	got, err := db.GetNote(note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Keep Me" {
		t.Errorf("title = %q, want unchanged", got.Title)
	}
	if blockmd.ToMarkdown(got.Content) != "new body" {
		t.Errorf("content = %q", blockmd.ToMarkdown(got.Content))
	}

	if err := db.UpdateNoteContent(note.ID, blockmd.ToBlocks("newer"), "Renamed"); err != nil {
		t.Fatal(err)
	}
	got, err = db.GetNote(note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Renamed" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestUpdateMissingNote(t *testing.T) {
	db := testDB(t)
	err := db.UpdateNoteContent("missing", blockmd.ToBlocks("x"), "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListNotesNewestFirst(t *testing.T) {
	db := testDB(t)
	a, err := db.CreateNote(CreateNoteParams{Title: "A"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := db.CreateNote(CreateNoteParams{Title: "B"})
	if err != nil {
		t.Fatal(err)
	}
	// Touch A so it becomes most recent.
	if err := db.UpdateNoteContent(a.ID, blockmd.ToBlocks("touched"), ""); err != nil {
		t.Fatal(err)
	}

	items, err := db.ListNotes()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].ID != a.ID || items[1].ID != b.ID {
		t.Errorf("order = %q, %q", items[0].Title, items[1].Title)
	}
}

func TestDeleteNoteCascades(t *testing.T) {
	db := testDB(t)
	note, err := db.CreateNote(CreateNoteParams{
		Title:   "Doomed",
		Content: blockmd.ToBlocks("body text"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateSuggestedEdit(models.SuggestedEdit{
		NoteID:   note.ID,
		EditType: models.EditUpdateBlock,
		After:    models.EditSnapshot{Content: blockmd.ToBlocks("proposal")},
	}); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteNote(note.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if _, err := db.GetNote(note.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("note still readable: %v", err)
	}

	var blockCount, editCount int
	if err := db.conn.QueryRow(`SELECT count(*) FROM blocks WHERE note_id = ?`, note.ID).Scan(&blockCount); err != nil {
		t.Fatal(err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM suggested_edits WHERE note_id = ?`, note.ID).Scan(&editCount); err != nil {
		t.Fatal(err)
	}
	if blockCount != 0 || editCount != 0 {
		t.Errorf("leftovers: %d blocks, %d edits", blockCount, editCount)
	}
}

func TestSetNoteFolder(t *testing.T) {
	db := testDB(t)
	folder, err := db.CreateFolder("Inbox", "")
	if err != nil {
		t.Fatal(err)
	}
	note, err := db.CreateNote(CreateNoteParams{Title: "Filed"})
	if err != nil {
		t.Fatal(err)
	}

	if err := db.SetNoteFolder(note.ID, folder.ID); err != nil {
		t.Fatalf("SetNoteFolder: %v", err)
	}
	got, err := db.GetNote(note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.FolderID != folder.ID {
		t.Errorf("folderId = %q", got.FolderID)
	}

	// Empty folder id unfiles.
	if err := db.SetNoteFolder(note.ID, ""); err != nil {
		t.Fatal(err)
	}
	got, err = db.GetNote(note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.FolderID != "" {
		t.Errorf("folderId = %q, want unfiled", got.FolderID)
	}

	if err := db.SetNoteFolder(note.ID, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for missing folder", err)
	}
}

func TestSearchContentAndTitles(t *testing.T) {
	db := testDB(t)
	soup, err := db.CreateNote(CreateNoteParams{
		Title:   "Recipes",
		Content: blockmd.ToBlocks("tomato soup with basil"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateNote(CreateNoteParams{
		Title:   "Basil Care",
		Content: blockmd.ToBlocks("water twice a week"),
	}); err != nil {
		t.Fatal(err)
	}

	hits, err := db.Search("basil")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits: %+v", len(hits), hits)
	}

	byNote := make(map[string]models.SearchHit)
	for _, h := range hits {
		byNote[h.NoteID] = h
	}
	if h := byNote[soup.ID]; h.MatchedOn != "content" || h.BlockID == "" {
		t.Errorf("content hit = %+v", h)
	}
	foundTitle := false
	for _, h := range hits {
		if h.MatchedOn == "title" && h.NoteTitle == "Basil Care" {
			foundTitle = true
		}
	}
	if !foundTitle {
		t.Errorf("no title hit in %+v", hits)
	}
}

func TestSearchDedupesByNote(t *testing.T) {
	db := testDB(t)
	note, err := db.CreateNote(CreateNoteParams{
		Title:   "Basil",
		Content: blockmd.ToBlocks("basil in the content too"),
	})
	if err != nil {
		t.Fatal(err)
	}

	hits, err := db.Search("basil")
	if err != nil {
		t.Fatal(err)
	}
	// A note matched by content never repeats as a title hit.
	for _, h := range hits {
		if h.NoteID == note.ID && h.MatchedOn == "title" {
			t.Errorf("duplicate title hit: %+v", hits)
		}
	}
}
