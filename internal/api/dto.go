package api

import (
	"time"

	"github.com/starford/grove/internal/models"
)

// CreateNoteRequest is the request body for creating a note. Content may be
// given as structured blocks or as markdown; blocks win when both are set.
type CreateNoteRequest struct {
	Title     string         `json:"title" example:"Reading List" validate:"required"`
	Content   []models.Block `json:"content,omitempty"`
	Markdown  string         `json:"markdown,omitempty" example:"# Reading List"`
	ManagedBy string         `json:"managedBy,omitempty" example:"user"`
	FolderID  string         `json:"folderId,omitempty"`
}

// UpdateNoteRequest is the request body for replacing a note's content.
type UpdateNoteRequest struct {
	Title   string         `json:"title,omitempty"`
	Content []models.Block `json:"content" validate:"required"`
}

// MoveNoteRequest sets or clears a note's folder.
type MoveNoteRequest struct {
	FolderID string `json:"folderId"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.NoteListItem `json:"notes" validate:"required"`
	Total int                   `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []models.SearchHit `json:"results" validate:"required"`
}

// FolderRequest is the request body for creating or renaming a folder.
type FolderRequest struct {
	Name     string `json:"name" example:"Projects" validate:"required"`
	ParentID string `json:"parentId,omitempty"`
}

// FolderListResponse wraps folder listings.
type FolderListResponse struct {
	Folders []models.Folder `json:"folders" validate:"required"`
}

// ConversationListResponse wraps conversation listings.
type ConversationListResponse struct {
	Conversations []models.Conversation `json:"conversations" validate:"required"`
}

// RenameConversationRequest is the request body for renaming a conversation.
type RenameConversationRequest struct {
	Title string `json:"title" validate:"required"`
}

// MessageListResponse wraps a conversation transcript.
type MessageListResponse struct {
	Messages []models.Message `json:"messages" validate:"required"`
}

// SendMessageRequest is the request body for sending a chat message.
type SendMessageRequest struct {
	Content string `json:"content" example:"Summarize my reading list" validate:"required"`
}

// SendMessageResponse acknowledges an accepted chat turn.
type SendMessageResponse struct {
	SessionID string    `json:"sessionId" validate:"required"`
	Accepted  bool      `json:"accepted" validate:"required"`
	QueuedAt  time.Time `json:"queuedAt" validate:"required"`
}

// EditListResponse wraps pending suggested edits.
type EditListResponse struct {
	Edits []models.SuggestedEdit `json:"edits" validate:"required"`
}

// IngestRequest is the request body for capturing a web page as a note.
type IngestRequest struct {
	URL      string `json:"url" example:"https://example.com/article" validate:"required"`
	FolderID string `json:"folderId,omitempty"`
}
