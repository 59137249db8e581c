package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/grove/internal/agent"
	"github.com/starford/grove/internal/blockmd"
	"github.com/starford/grove/internal/models"
	"github.com/starford/grove/internal/store"
	"github.com/starford/grove/internal/testutil"
)

type fakeTurns struct {
	enqueued []string
	err      error
}

func (f *fakeTurns) Enqueue(sessionID, userMessage string) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, sessionID+"|"+userMessage)
	return nil
}

type fakeIngester struct {
	note *models.Note
	err  error
}

func (f *fakeIngester) Ingest(_ context.Context, url, folderID string) (*models.Note, error) {
	return f.note, f.err
}

func newTestServer(t *testing.T) (*httptest.Server, *store.DB, *fakeTurns) {
	t.Helper()
	db := testutil.TestDB(t)
	turns := &fakeTurns{}
	h := NewHandler(db, turns, &fakeIngester{}, nil)
	srv := httptest.NewServer(NewRouter(h, false, "", nil))
	t.Cleanup(srv.Close)
	return srv, db, turns
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestNotesCRUD(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/notes", CreateNoteRequest{
		Title:    "Reading List",
		Markdown: "# Books\n- Dune",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decode[models.Note](t, resp)
	if created.ID == "" || created.ManagedBy != models.ManagedByAI {
		t.Fatalf("created = %+v", created)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/notes/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	got := decode[models.Note](t, resp)
	if blockmd.ToMarkdown(got.Content) != "# Books\n\n- Dune" {
		t.Errorf("content = %q", blockmd.ToMarkdown(got.Content))
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/notes/"+created.ID, UpdateNoteRequest{
		Title:   "Reading List 2026",
		Content: blockmd.ToBlocks("# Books\n- Dune\n- Hyperion"),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	updated := decode[models.Note](t, resp)
	if updated.Title != "Reading List 2026" || len(updated.Content) != 3 {
		t.Errorf("updated = %+v", updated)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/notes", nil)
	list := decode[NoteListResponse](t, resp)
	if list.Total != 1 || len(list.Notes) != 1 {
		t.Errorf("list = %+v", list)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/notes/"+created.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/notes/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.StatusCode)
	}
}

func TestNoteValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/notes", CreateNoteRequest{Markdown: "no title"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing title status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/notes/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing note status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/search", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty query status = %d", resp.StatusCode)
	}
}

func TestFoldersAndMove(t *testing.T) {
	srv, db, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/folders", FolderRequest{Name: "Projects"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create folder status = %d", resp.StatusCode)
	}
	folder := decode[models.Folder](t, resp)

	note, err := db.CreateNote(store.CreateNoteParams{Title: "Roadmap"})
	if err != nil {
		t.Fatal(err)
	}
	resp = doJSON(t, http.MethodPut, srv.URL+"/notes/"+note.ID+"/folder", MoveNoteRequest{FolderID: folder.ID})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("move status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/folders/"+folder.ID, FolderRequest{Name: "Active"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("rename status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/folders/"+folder.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	got, err := db.GetNote(note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.FolderID != "" {
		t.Errorf("note still filed under %q", got.FolderID)
	}
}

func TestConversationFlow(t *testing.T) {
	srv, _, turns := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/conversations", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	conv := decode[models.Conversation](t, resp)
	if conv.Title != "New conversation" {
		t.Errorf("title = %q", conv.Title)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/conversations/"+conv.ID+"/messages",
		SendMessageRequest{Content: "hello"})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("send status = %d", resp.StatusCode)
	}
	ack := decode[SendMessageResponse](t, resp)
	if !ack.Accepted || ack.SessionID != conv.ID {
		t.Errorf("ack = %+v", ack)
	}
	if len(turns.enqueued) != 1 || turns.enqueued[0] != conv.ID+"|hello" {
		t.Errorf("enqueued = %v", turns.enqueued)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/conversations/"+conv.ID+"/messages", nil)
	msgs := decode[MessageListResponse](t, resp)
	if len(msgs.Messages) != 0 {
		t.Errorf("messages = %+v", msgs.Messages)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/conversations/missing/messages",
		SendMessageRequest{Content: "hello"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing conversation status = %d", resp.StatusCode)
	}
}

func TestSendMessageBackpressure(t *testing.T) {
	db := testutil.TestDB(t)
	turns := &fakeTurns{err: agent.ErrQueueFull}
	h := NewHandler(db, turns, &fakeIngester{}, nil)
	srv := httptest.NewServer(NewRouter(h, false, "", nil))
	t.Cleanup(srv.Close)

	conv, err := db.CreateConversation()
	if err != nil {
		t.Fatal(err)
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/conversations/"+conv.ID+"/messages",
		SendMessageRequest{Content: "hi"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestEditLifecycle(t *testing.T) {
	srv, db, _ := newTestServer(t)

	note, err := db.CreateNote(store.CreateNoteParams{
		Title:     "Journal",
		Content:   blockmd.ToBlocks("original"),
		ManagedBy: models.ManagedByUser,
	})
	if err != nil {
		t.Fatal(err)
	}
	edit, err := db.CreateSuggestedEdit(models.SuggestedEdit{
		NoteID:   note.ID,
		EditType: models.EditUpdateBlock,
		Before:   models.EditSnapshot{Title: note.Title, Content: note.Content},
		After:    models.EditSnapshot{Title: note.Title, Content: blockmd.ToBlocks("revised")},
	})
	if err != nil {
		t.Fatal(err)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/edits?noteId="+note.ID, nil)
	list := decode[EditListResponse](t, resp)
	if len(list.Edits) != 1 {
		t.Fatalf("pending = %+v", list.Edits)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/edits/"+edit.ID+"/accept", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("accept status = %d", resp.StatusCode)
	}
	got, err := db.GetNote(note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if blockmd.ToMarkdown(got.Content) != "revised" {
		t.Errorf("content = %q", blockmd.ToMarkdown(got.Content))
	}

	// Resolution is terminal.
	resp = doJSON(t, http.MethodPost, srv.URL+"/edits/"+edit.ID+"/reject", nil)
	if resp.StatusCode != http.StatusGone {
		t.Errorf("re-resolve status = %d, want 410", resp.StatusCode)
	}
}

func TestIngestEndpoint(t *testing.T) {
	db := testutil.TestDB(t)
	ing := &fakeIngester{note: &models.Note{ID: "n1", Title: "Captured"}}
	h := NewHandler(db, &fakeTurns{}, ing, nil)
	srv := httptest.NewServer(NewRouter(h, false, "", nil))
	t.Cleanup(srv.Close)

	resp := doJSON(t, http.MethodPost, srv.URL+"/sources", IngestRequest{URL: "https://example.com"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	note := decode[models.Note](t, resp)
	if note.Title != "Captured" {
		t.Errorf("note = %+v", note)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/sources", IngestRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing url status = %d", resp.StatusCode)
	}
}

func TestAuthMiddleware(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewHandler(db, &fakeTurns{}, &fakeIngester{}, nil)
	srv := httptest.NewServer(NewRouter(h, true, "secret", nil))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/notes")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/notes", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("valid token status = %d", resp.StatusCode)
	}
}
