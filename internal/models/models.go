// Package models defines the domain types for Grove.
package models

import (
	"encoding/json"
	"time"
)

// ManagedBy values for a note. Absence in stored data means ManagedByAI;
// the store normalizes this on read so callers never see an empty value.
const (
	ManagedByAI   = "ai"
	ManagedByUser = "user"
)

// Block types used in note content. Unrecognized types are preserved
// verbatim and rendered as plain text.
const (
	BlockParagraph        = "paragraph"
	BlockHeading          = "heading"
	BlockBulletListItem   = "bulletListItem"
	BlockNumberedListItem = "numberedListItem"
	BlockCheckListItem    = "checkListItem"
	BlockCodeBlock        = "codeBlock"
	BlockQuote            = "quote"
)

// Styles are the inline formatting flags on a text run.
type Styles struct {
	Bold   bool `json:"bold,omitempty"`
	Italic bool `json:"italic,omitempty"`
	Code   bool `json:"code,omitempty"`
}

// InlineText is one styled run inside a block's content array.
// Type is "text" for plain runs and "link" for hyperlinks.
type InlineText struct {
	Type    string       `json:"type"`
	Text    string       `json:"text,omitempty"`
	Styles  Styles       `json:"styles,omitempty"`
	Href    string       `json:"href,omitempty"`
	Content []InlineText `json:"content,omitempty"`
}

// BlockProps holds per-block presentation attributes.
type BlockProps struct {
	Level   int  `json:"level,omitempty"`
	Checked bool `json:"checked,omitempty"`
}

// Block is a typed node in a note's content tree.
type Block struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Props    BlockProps   `json:"props,omitempty"`
	Content  []InlineText `json:"content"`
	Children []Block      `json:"children"`
}

// Note is a block-structured document.
type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      []Block   `json:"content"`
	ManagedBy    string    `json:"managedBy"`
	SourceURL    string    `json:"sourceUrl,omitempty"`
	FolderID     string    `json:"folderId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastTaggedAt time.Time `json:"lastTaggedAt,omitzero"`
}

// NoteListItem is a lightweight representation returned by list operations.
type NoteListItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ManagedBy string    `json:"managedBy"`
	FolderID  string    `json:"folderId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Folder groups notes. Folders form a tree via ParentID; a folder with an
// empty ParentID is a root folder.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Conversation is one agent chat session.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ToolCall records one tool invocation made during an agent turn, kept for
// transcript replay in the UI.
type ToolCall struct {
	ToolName   string          `json:"toolName"`
	Input      json.RawMessage `json:"input"`
	Output     json.RawMessage `json:"output"`
	DurationMs int64           `json:"durationMs"`
}

// Message is one transcript entry in a conversation. Messages are immutable
// once written; the transcript is append-only.
type Message struct {
	ID              string     `json:"id"`
	SessionID       string     `json:"sessionId"`
	Role            string     `json:"role"`
	Content         string     `json:"content"`
	ThinkingContent string     `json:"thinkingContent,omitempty"`
	ToolCalls       []ToolCall `json:"toolCalls,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Suggested edit types.
const (
	EditCreateNote  = "create_note"
	EditAddBlock    = "add_block"
	EditUpdateBlock = "update_block"
	EditDeleteBlock = "delete_block"
	EditUpdateTitle = "update_title"
)

// Suggested edit statuses. Accepted and rejected are terminal.
const (
	EditPending  = "pending"
	EditAccepted = "accepted"
	EditRejected = "rejected"
)

// EditSnapshot captures the affected fields of a note before or after a
// suggested edit.
type EditSnapshot struct {
	Title   string  `json:"title,omitempty"`
	Content []Block `json:"content,omitempty"`
}

// SuggestedEdit is a pending mutation proposal created by the ownership gate
// when the agent tries to change a user-managed note.
type SuggestedEdit struct {
	ID        string       `json:"id"`
	NoteID    string       `json:"noteId"`
	SessionID string       `json:"sessionId,omitempty"`
	EditType  string       `json:"editType"`
	BlockID   string       `json:"blockId,omitempty"`
	Before    EditSnapshot `json:"before"`
	After     EditSnapshot `json:"after"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
}

// SearchHit is one result from block/title search.
type SearchHit struct {
	NoteID    string `json:"noteId"`
	NoteTitle string `json:"noteTitle"`
	BlockID   string `json:"blockId,omitempty"`
	Text      string `json:"text"`
	Type      string `json:"type"`
	MatchedOn string `json:"matchedOn"` // "content" or "title"
}
