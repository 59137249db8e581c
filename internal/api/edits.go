package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/grove/internal/models"
)

// ListEdits handles GET /api/edits.
//
//	@Summary		List pending suggested edits, optionally for one note
//	@Tags			edits
//	@Produce		json
//	@Param			noteId	query		string	false	"Filter by note"
//	@Success		200		{object}	EditListResponse
//	@Security		BearerAuth
//	@Router			/edits [get]
func (h *Handler) ListEdits(w http.ResponseWriter, r *http.Request) {
	edits, err := h.store.ListPendingEdits(r.URL.Query().Get("noteId"))
	if err != nil {
		writeStoreError(w, "list edits", err)
		return
	}
	if edits == nil {
		edits = []models.SuggestedEdit{}
	}
	writeJSON(w, http.StatusOK, EditListResponse{Edits: edits})
}

// AcceptEdit handles POST /api/edits/{id}/accept.
//
// Accepting applies the edit's proposed snapshot to the note. Resolution is
// terminal: re-accepting or re-rejecting returns 410 Gone.
//
//	@Summary		Accept a suggested edit and apply it to the note
//	@Tags			edits
//	@Param			id	path	string	true	"Edit ID"
//	@Success		204	"Edit applied"
//	@Failure		404	{object}	errResponse
//	@Failure		410	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/edits/{id}/accept [post]
func (h *Handler) AcceptEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	edit, err := h.store.GetSuggestedEdit(id)
	if err != nil {
		writeStoreError(w, "accept edit", err)
		return
	}
	if err := h.store.AcceptSuggestedEdit(id); err != nil {
		writeStoreError(w, "accept edit", err)
		return
	}
	h.events.PublishNoteEvent("updated", edit.NoteID)
	w.WriteHeader(http.StatusNoContent)
}

// RejectEdit handles POST /api/edits/{id}/reject.
//
//	@Summary		Reject a suggested edit, leaving the note untouched
//	@Tags			edits
//	@Param			id	path	string	true	"Edit ID"
//	@Success		204	"Edit rejected"
//	@Failure		404	{object}	errResponse
//	@Failure		410	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/edits/{id}/reject [post]
func (h *Handler) RejectEdit(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RejectSuggestedEdit(chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "reject edit", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
