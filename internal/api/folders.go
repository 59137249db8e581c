package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/grove/internal/models"
)

// ListFolders handles GET /api/folders.
//
//	@Summary		List all folders
//	@Tags			folders
//	@Produce		json
//	@Success		200	{object}	FolderListResponse
//	@Security		BearerAuth
//	@Router			/folders [get]
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.store.ListFolders()
	if err != nil {
		writeStoreError(w, "list folders", err)
		return
	}
	if folders == nil {
		folders = []models.Folder{}
	}
	writeJSON(w, http.StatusOK, FolderListResponse{Folders: folders})
}

// CreateFolder handles POST /api/folders.
//
//	@Summary		Create a folder, optionally nested under a parent
//	@Tags			folders
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FolderRequest	true	"Folder to create"
//	@Success		201		{object}	models.Folder
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders [post]
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req FolderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	folder, err := h.store.CreateFolder(req.Name, req.ParentID)
	if err != nil {
		writeStoreError(w, "create folder", err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

// RenameFolder handles PUT /api/folders/{id}.
//
//	@Summary		Rename a folder
//	@Tags			folders
//	@Accept			json
//	@Param			id		path	string			true	"Folder ID"
//	@Param			body	body	FolderRequest	true	"New name"
//	@Success		204		"Folder renamed"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{id} [put]
func (h *Handler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	var req FolderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	if err := h.store.RenameFolder(chi.URLParam(r, "id"), req.Name); err != nil {
		writeStoreError(w, "rename folder", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteFolder handles DELETE /api/folders/{id}.
//
//	@Summary		Delete a folder; its notes are unfiled and child folders move up
//	@Tags			folders
//	@Param			id	path	string	true	"Folder ID"
//	@Success		204	"Folder deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{id} [delete]
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteFolder(chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "delete folder", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
