package store

import (
	"errors"
	"testing"

	"github.com/starford/grove/internal/apperr"
)

func TestCreateFolderValidation(t *testing.T) {
	db := testDB(t)

	if _, err := db.CreateFolder("   ", ""); err == nil {
		t.Error("blank name should fail")
	}
	if _, err := db.CreateFolder("Orphan", "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for missing parent", err)
	}

	folder, err := db.CreateFolder("  Projects  ", "")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if folder.Name != "Projects" {
		t.Errorf("name = %q, want trimmed", folder.Name)
	}
}

func TestFolderHierarchy(t *testing.T) {
	db := testDB(t)
	root, err := db.CreateFolder("Root", "")
	if err != nil {
		t.Fatal(err)
	}
	child, err := db.CreateFolder("Child", root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if child.ParentID != root.ID {
		t.Errorf("parentId = %q", child.ParentID)
	}

	folders, err := db.ListFolders()
	if err != nil {
		t.Fatal(err)
	}
	if len(folders) != 2 {
		t.Fatalf("got %d folders", len(folders))
	}
}

func TestRenameFolder(t *testing.T) {
	db := testDB(t)
	folder, err := db.CreateFolder("Old", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.RenameFolder(folder.ID, "New"); err != nil {
		t.Fatalf("RenameFolder: %v", err)
	}
	got, err := db.GetFolder(folder.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "New" {
		t.Errorf("name = %q", got.Name)
	}

	if err := db.RenameFolder("missing", "X"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteFolderUnfilesNotesAndReparentsChildren(t *testing.T) {
	db := testDB(t)
	grandparent, err := db.CreateFolder("Grandparent", "")
	if err != nil {
		t.Fatal(err)
	}
	parent, err := db.CreateFolder("Parent", grandparent.ID)
	if err != nil {
		t.Fatal(err)
	}
	child, err := db.CreateFolder("Child", parent.ID)
	if err != nil {
		t.Fatal(err)
	}
	note, err := db.CreateNote(CreateNoteParams{Title: "Filed", FolderID: parent.ID})
	if err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteFolder(parent.ID); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}

	// Notes become unfiled, never deleted.
	gotNote, err := db.GetNote(note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gotNote.FolderID != "" {
		t.Errorf("note folderId = %q, want unfiled", gotNote.FolderID)
	}

	// Children move up to the deleted folder's parent.
	gotChild, err := db.GetFolder(child.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gotChild.ParentID != grandparent.ID {
		t.Errorf("child parentId = %q, want %q", gotChild.ParentID, grandparent.ID)
	}

	if _, err := db.GetFolder(parent.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("deleted folder still readable: %v", err)
	}
}

func TestDeleteRootFolderPromotesChildrenToRoot(t *testing.T) {
	db := testDB(t)
	root, err := db.CreateFolder("Root", "")
	if err != nil {
		t.Fatal(err)
	}
	child, err := db.CreateFolder("Child", root.ID)
	if err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteFolder(root.ID); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetFolder(child.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ParentID != "" {
		t.Errorf("child parentId = %q, want root", got.ParentID)
	}
}
