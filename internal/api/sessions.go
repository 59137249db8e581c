package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starford/grove/internal/agent"
	"github.com/starford/grove/internal/models"
)

// ListConversations handles GET /api/conversations.
//
//	@Summary		List conversations, most recently active first
//	@Tags			chat
//	@Produce		json
//	@Success		200	{object}	ConversationListResponse
//	@Security		BearerAuth
//	@Router			/conversations [get]
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.store.ListConversations()
	if err != nil {
		writeStoreError(w, "list conversations", err)
		return
	}
	if convs == nil {
		convs = []models.Conversation{}
	}
	writeJSON(w, http.StatusOK, ConversationListResponse{Conversations: convs})
}

// CreateConversation handles POST /api/conversations.
//
//	@Summary		Start a new conversation
//	@Tags			chat
//	@Produce		json
//	@Success		201	{object}	models.Conversation
//	@Security		BearerAuth
//	@Router			/conversations [post]
func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.store.CreateConversation()
	if err != nil {
		writeStoreError(w, "create conversation", err)
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

// RenameConversation handles PUT /api/conversations/{id}.
//
//	@Summary		Rename a conversation
//	@Tags			chat
//	@Accept			json
//	@Param			id		path	string						true	"Conversation ID"
//	@Param			body	body	RenameConversationRequest	true	"New title"
//	@Success		204		"Conversation renamed"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/conversations/{id} [put]
func (h *Handler) RenameConversation(w http.ResponseWriter, r *http.Request) {
	var req RenameConversationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.store.RenameConversation(chi.URLParam(r, "id"), req.Title); err != nil {
		writeStoreError(w, "rename conversation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteConversation handles DELETE /api/conversations/{id}.
//
//	@Summary		Delete a conversation and its transcript
//	@Tags			chat
//	@Param			id	path	string	true	"Conversation ID"
//	@Success		204	"Conversation deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/conversations/{id} [delete]
func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteConversation(chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "delete conversation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMessages handles GET /api/conversations/{id}/messages.
//
//	@Summary		Get a conversation's transcript, oldest first
//	@Tags			chat
//	@Produce		json
//	@Param			id	path		string	true	"Conversation ID"
//	@Success		200	{object}	MessageListResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/conversations/{id}/messages [get]
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.GetConversation(id); err != nil {
		writeStoreError(w, "list messages", err)
		return
	}
	msgs, err := h.store.ListMessages(id)
	if err != nil {
		writeStoreError(w, "list messages", err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	writeJSON(w, http.StatusOK, MessageListResponse{Messages: msgs})
}

// SendMessage handles POST /api/conversations/{id}/messages.
//
// The agent turn runs asynchronously; the transcript is available once a
// session.updated event fires for this conversation.
//
//	@Summary		Send a chat message and queue an agent turn
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Conversation ID"
//	@Param			body	body		SendMessageRequest	true	"Message to send"
//	@Success		202		{object}	SendMessageResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/conversations/{id}/messages [post]
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req SendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	if _, err := h.store.GetConversation(id); err != nil {
		writeStoreError(w, "send message", err)
		return
	}
	if err := h.turns.Enqueue(id, req.Content); err != nil {
		if errors.Is(err, agent.ErrQueueFull) {
			writeJSON(w, http.StatusServiceUnavailable, errorBody("agent busy, try again shortly"))
			return
		}
		writeStoreError(w, "send message", err)
		return
	}
	writeJSON(w, http.StatusAccepted, SendMessageResponse{
		SessionID: id,
		Accepted:  true,
		QueuedAt:  time.Now().UTC(),
	})
}
