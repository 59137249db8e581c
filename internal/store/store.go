package store

import "github.com/starford/grove/internal/models"

// Store defines the document-store operations consumed by the agent, the
// API layer, and source ingestion. Consumers should depend on this
// interface rather than the concrete *DB type to facilitate testing.
type Store interface {
	// Notes.
	CreateNote(p CreateNoteParams) (*models.Note, error)
	GetNote(id string) (*models.Note, error)
	ListNotes() ([]models.NoteListItem, error)
	UpdateNoteContent(id string, content []models.Block, title string) error
	UpdateNoteTitle(id, title string) error
	DeleteNote(id string) error
	SetNoteFolder(noteID, folderID string) error

	// Search.
	Search(query string) ([]models.SearchHit, error)

	// Folders.
	CreateFolder(name, parentID string) (*models.Folder, error)
	GetFolder(id string) (*models.Folder, error)
	ListFolders() ([]models.Folder, error)
	RenameFolder(id, name string) error
	DeleteFolder(id string) error

	// Conversations and transcripts.
	CreateConversation() (*models.Conversation, error)
	GetConversation(id string) (*models.Conversation, error)
	ListConversations() ([]models.Conversation, error)
	RenameConversation(id, title string) error
	DeleteConversation(id string) error
	AppendUserMessage(sessionID, content string) (*models.Message, error)
	AppendAssistantMessage(sessionID, content, thinking string, toolCalls []models.ToolCall) (*models.Message, error)
	ListMessages(sessionID string) ([]models.Message, error)

	// Suggested edits.
	CreateSuggestedEdit(edit models.SuggestedEdit) (*models.SuggestedEdit, error)
	GetSuggestedEdit(id string) (*models.SuggestedEdit, error)
	ListPendingEdits(noteID string) ([]models.SuggestedEdit, error)
	AcceptSuggestedEdit(id string) error
	RejectSuggestedEdit(id string) error

	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
