package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/grove/internal/apperr"
	"github.com/starford/grove/internal/blockmd"
	"github.com/starford/grove/internal/models"
	"github.com/starford/grove/internal/store"
)

// TurnQueue schedules agent turns for asynchronous processing.
type TurnQueue interface {
	Enqueue(sessionID, userMessage string) error
}

// Ingester captures a web page as a note.
type Ingester interface {
	Ingest(ctx context.Context, url, folderID string) (*models.Note, error)
}

// Events broadcasts change notifications to SSE clients.
type Events interface {
	PublishNoteEvent(kind, noteID string)
}

type noopEvents struct{}

func (noopEvents) PublishNoteEvent(string, string) {}

// Handler holds API route handlers.
type Handler struct {
	store  store.Store
	turns  TurnQueue
	ingest Ingester
	events Events
}

// NewHandler creates a new Handler. turns, ingest, and events may be nil
// for surfaces that don't use them (e.g. tests of a single route group).
func NewHandler(st store.Store, turns TurnQueue, ingest Ingester, events Events) *Handler {
	if events == nil {
		events = noopEvents{}
	}
	return &Handler{store: st, turns: turns, ingest: ingest, events: events}
}

// writeStoreError maps store failures onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrResolved):
		writeJSON(w, http.StatusGone, errorBody("edit already resolved"))
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes, most recently updated first
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListNotes()
	if err != nil {
		writeStoreError(w, "list notes", err)
		return
	}
	if items == nil {
		items = []models.NoteListItem{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note with its full block content
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note ID"
//	@Success		200	{object}	models.Note
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.store.GetNote(chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a new note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	content := req.Content
	if content == nil && req.Markdown != "" {
		content = blockmd.ToBlocks(req.Markdown)
	}
	note, err := h.store.CreateNote(store.CreateNoteParams{
		Title:     req.Title,
		Content:   content,
		ManagedBy: req.ManagedBy,
		FolderID:  req.FolderID,
	})
	if err != nil {
		writeStoreError(w, "create note", err)
		return
	}
	h.events.PublishNoteEvent("created", note.ID)
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Replace a note's content (and optionally its title)
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Note ID"
//	@Param			body	body		UpdateNoteRequest	true	"Updated content"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Content == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	if err := h.store.UpdateNoteContent(id, req.Content, req.Title); err != nil {
		writeStoreError(w, "update note", err)
		return
	}
	note, err := h.store.GetNote(id)
	if err != nil {
		writeStoreError(w, "update note", err)
		return
	}
	h.events.PublishNoteEvent("updated", id)
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			id	path	string	true	"Note ID"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteNote(id); err != nil {
		writeStoreError(w, "delete note", err)
		return
	}
	h.events.PublishNoteEvent("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// MoveNote handles PUT /api/notes/{id}/folder.
//
//	@Summary		Move a note into a folder, or unfile it
//	@Tags			notes
//	@Accept			json
//	@Param			id		path	string			true	"Note ID"
//	@Param			body	body	MoveNoteRequest	true	"Destination folder (empty to unfile)"
//	@Success		204		"Note moved"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/folder [put]
func (h *Handler) MoveNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req MoveNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.store.SetNoteFolder(id, req.FolderID); err != nil {
		writeStoreError(w, "move note", err)
		return
	}
	h.events.PublishNoteEvent("updated", id)
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Search note content and titles
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	true	"Search query"
//	@Success		200	{object}	SearchResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	results, err := h.store.Search(q)
	if err != nil {
		writeStoreError(w, "search", err)
		return
	}
	if results == nil {
		results = []models.SearchHit{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// IngestSource handles POST /api/sources.
//
//	@Summary		Capture a web page as a new note
//	@Tags			sources
//	@Accept			json
//	@Produce		json
//	@Param			body	body		IngestRequest	true	"Page to capture"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sources [post]
func (h *Handler) IngestSource(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("url is required"))
		return
	}
	note, err := h.ingest.Ingest(r.Context(), req.URL, req.FolderID)
	if err != nil {
		slog.Error("ingest failed", slog.String("url", req.URL), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("could not capture source"))
		return
	}
	h.events.PublishNoteEvent("created", note.ID)
	writeJSON(w, http.StatusCreated, note)
}
