// Package agent implements the Lore agent: the tool registry, the
// ownership gate for AI-vs-user managed notes, and the multi-turn tool-use
// loop that drives a conversation turn to completion.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/starford/grove/internal/blockmd"
	"github.com/starford/grove/internal/llm"
	"github.com/starford/grove/internal/models"
	"github.com/starford/grove/internal/store"
)

// Tool names. web_search is provider-executed and never dispatched here.
const (
	ToolListNotes        = "list_notes"
	ToolReadNote         = "read_note"
	ToolSearchNotes      = "search_notes"
	ToolCreateNote       = "create_note"
	ToolUpdateNote       = "update_note"
	ToolUpdateTitle      = "update_title"
	ToolListFolders      = "list_folders"
	ToolCreateFolder     = "create_folder"
	ToolRenameFolder     = "rename_folder"
	ToolDeleteFolder     = "delete_folder"
	ToolMoveNoteToFolder = "move_note_to_folder"
	ToolWebSearch        = "web_search"
)

// webSearchToolType is the server-tool identifier for Anthropic's built-in
// web search; the API executes searches itself and returns result blocks.
const (
	webSearchToolType = "web_search_20260209"
	webSearchMaxUses  = 5
)

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{"type": "object", "properties": props, "required": required}
}

// Catalog returns the full tool list sent to the model: the custom tools
// executed by Dispatch plus the server-side web search tool.
func Catalog() []llm.Tool {
	return []llm.Tool{
		{
			Name:        ToolListNotes,
			Description: "List all notes with their IDs, titles, ownership, folder, and last updated time.",
			InputSchema: objectSchema(map[string]any{}),
		},
		{
			Name:        ToolReadNote,
			Description: "Read the full markdown content of a specific note.",
			InputSchema: objectSchema(map[string]any{
				"noteId": stringProp("The note's ID"),
			}, "noteId"),
		},
		{
			Name:        ToolSearchNotes,
			Description: "Search for blocks matching a text query across all notes.",
			InputSchema: objectSchema(map[string]any{
				"query": stringProp("Text to search for"),
			}, "query"),
		},
		{
			Name:        ToolCreateNote,
			Description: "Create a new note with a title and optional initial content.",
			InputSchema: objectSchema(map[string]any{
				"title":    stringProp("Title for the new note"),
				"content":  stringProp("Initial markdown content (optional)"),
				"folderId": stringProp("Folder to place the note in (optional)"),
			}, "title"),
		},
		{
			Name: ToolUpdateNote,
			Description: "Replace the full content of a note. Use this to add, edit, or reorganize content. " +
				"Provide the complete new markdown; it will be converted to blocks.",
			InputSchema: objectSchema(map[string]any{
				"noteId":   stringProp("The note's ID"),
				"markdown": stringProp("The complete new note content in markdown"),
				"title":    stringProp("New title (optional, omit to keep existing)"),
			}, "noteId", "markdown"),
		},
		{
			Name:        ToolUpdateTitle,
			Description: "Rename a note.",
			InputSchema: objectSchema(map[string]any{
				"noteId": stringProp("The note's ID"),
				"title":  stringProp("The new title"),
			}, "noteId", "title"),
		},
		{
			Name:        ToolListFolders,
			Description: "List all folders with their IDs, names, and parent folders.",
			InputSchema: objectSchema(map[string]any{}),
		},
		{
			Name:        ToolCreateFolder,
			Description: "Create a new folder, optionally inside a parent folder.",
			InputSchema: objectSchema(map[string]any{
				"name":     stringProp("Folder name"),
				"parentId": stringProp("Parent folder ID (optional, omit for a top-level folder)"),
			}, "name"),
		},
		{
			Name:        ToolRenameFolder,
			Description: "Rename a folder.",
			InputSchema: objectSchema(map[string]any{
				"folderId": stringProp("The folder's ID"),
				"name":     stringProp("The new name"),
			}, "folderId", "name"),
		},
		{
			Name: ToolDeleteFolder,
			Description: "Delete a folder. Its notes become unfiled and any child folders move up " +
				"to the deleted folder's parent; no notes are deleted.",
			InputSchema: objectSchema(map[string]any{
				"folderId": stringProp("The folder's ID"),
			}, "folderId"),
		},
		{
			Name:        ToolMoveNoteToFolder,
			Description: "Move a note into a folder, or out of all folders when folderId is omitted.",
			InputSchema: objectSchema(map[string]any{
				"noteId":   stringProp("The note's ID"),
				"folderId": stringProp("Destination folder ID (optional, omit to unfile)"),
			}, "noteId"),
		},
		{
			Name:       ToolWebSearch,
			ServerType: webSearchToolType,
			MaxUses:    webSearchMaxUses,
		},
	}
}

// ErrorResult is the structured failure value returned to the model. Tool
// execution never raises; every failure is data the model can react to.
type ErrorResult struct {
	Error string `json:"error"`
}

// SuccessResult acknowledges a mutation.
type SuccessResult struct {
	Success bool `json:"success"`
}

// CreatedResult acknowledges a creation with the new record's id.
type CreatedResult struct {
	Success  bool   `json:"success"`
	NoteID   string `json:"noteId,omitempty"`
	FolderID string `json:"folderId,omitempty"`
}

// UpdateResult acknowledges a direct content update.
type UpdateResult struct {
	Success       bool `json:"success"`
	BlocksUpdated int  `json:"blocksUpdated,omitempty"`
}

// PendingResult reports that the mutation was converted into a suggested
// edit awaiting human approval instead of being applied.
type PendingResult struct {
	PendingApproval bool   `json:"pendingApproval"`
	EditID          string `json:"editId"`
	Message         string `json:"message"`
}

type readNoteInput struct {
	NoteID string `json:"noteId"`
}

type searchInput struct {
	Query string `json:"query"`
}

type createNoteInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	FolderID string `json:"folderId"`
}

type updateNoteInput struct {
	NoteID   string `json:"noteId"`
	Markdown string `json:"markdown"`
	Title    string `json:"title"`
}

type updateTitleInput struct {
	NoteID string `json:"noteId"`
	Title  string `json:"title"`
}

type createFolderInput struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

type renameFolderInput struct {
	FolderID string `json:"folderId"`
	Name     string `json:"name"`
}

type deleteFolderInput struct {
	FolderID string `json:"folderId"`
}

type moveNoteInput struct {
	NoteID   string `json:"noteId"`
	FolderID string `json:"folderId"`
}

type noteSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ManagedBy string `json:"managedBy"`
	FolderID  string `json:"folderId,omitempty"`
	UpdatedAt int64  `json:"updatedAt"`
}

type noteDetail struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ManagedBy string `json:"managedBy"`
	SourceURL string `json:"sourceUrl,omitempty"`
	Content   string `json:"content"`
}

type folderSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
}

// Registry executes model-requested tool calls against the document store.
// A registry is scoped to one conversation so that suggested edits it
// creates carry the session that proposed them.
type Registry struct {
	store     store.Store
	sessionID string
}

// NewRegistry creates a registry. sessionID may be empty for surfaces that
// are not tied to a conversation (e.g. the MCP server).
func NewRegistry(st store.Store, sessionID string) *Registry {
	return &Registry{store: st, sessionID: sessionID}
}

// Dispatch executes a tool by name. It is total: malformed input, unknown
// tools, and store failures all come back as ErrorResult values, never as
// Go errors, because the result is serialized back to the model.
func (r *Registry) Dispatch(ctx context.Context, name string, input json.RawMessage) any {
	switch name {
	case ToolListNotes:
		return r.listNotes()
	case ToolReadNote:
		var in readNoteInput
		if msg, ok := decodeInput(input, &in); !ok {
			return ErrorResult{Error: msg}
		}
		return r.readNote(in)
	case ToolSearchNotes:
		var in searchInput
		if msg, ok := decodeInput(input, &in); !ok {
			return ErrorResult{Error: msg}
		}
		return r.searchNotes(in)
	case ToolCreateNote:
		var in createNoteInput
		if msg, ok := decodeInput(input, &in); !ok {
			return ErrorResult{Error: msg}
		}
		return r.createNote(in)
	case ToolUpdateNote:
		var in updateNoteInput
		if msg, ok := decodeInput(input, &in); !ok {
			return ErrorResult{Error: msg}
		}
		return r.updateNote(in)
	case ToolUpdateTitle:
		var in updateTitleInput
		if msg, ok := decodeInput(input, &in); !ok {
			return ErrorResult{Error: msg}
		}
		return r.updateTitle(in)
	case ToolListFolders:
		return r.listFolders()
	case ToolCreateFolder:
		var in createFolderInput
		if msg, ok := decodeInput(input, &in); !ok {
			return ErrorResult{Error: msg}
		}
		return r.createFolder(in)
	case ToolRenameFolder:
		var in renameFolderInput
		if msg, ok := decodeInput(input, &in); !ok {
			return ErrorResult{Error: msg}
		}
		return r.renameFolder(in)
	case ToolDeleteFolder:
		var in deleteFolderInput
		if msg, ok := decodeInput(input, &in); !ok {
			return ErrorResult{Error: msg}
		}
		return r.deleteFolder(in)
	case ToolMoveNoteToFolder:
		var in moveNoteInput
		if msg, ok := decodeInput(input, &in); !ok {
			return ErrorResult{Error: msg}
		}
		return r.moveNote(in)
	default:
		return ErrorResult{Error: fmt.Sprintf("Unknown tool: %s", name)}
	}
}

// decodeInput unmarshals raw tool input into its typed form. An empty
// input is treated as an empty object.
func decodeInput(raw json.RawMessage, v any) (string, bool) {
	if len(raw) == 0 {
		return "", true
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Sprintf("invalid tool input: %v", err), false
	}
	return "", true
}

func (r *Registry) listNotes() any {
	notes, err := r.store.ListNotes()
	if err != nil {
		return ErrorResult{Error: err.Error()}
	}
	out := make([]noteSummary, len(notes))
	for i, n := range notes {
		out[i] = noteSummary{
			ID:        n.ID,
			Title:     n.Title,
			ManagedBy: n.ManagedBy,
			FolderID:  n.FolderID,
			UpdatedAt: n.UpdatedAt.UnixMilli(),
		}
	}
	return out
}

func (r *Registry) readNote(in readNoteInput) any {
	note, err := r.store.GetNote(in.NoteID)
	if err != nil {
		return ErrorResult{Error: "Note not found"}
	}
	return noteDetail{
		ID:        note.ID,
		Title:     note.Title,
		ManagedBy: note.ManagedBy,
		SourceURL: note.SourceURL,
		Content:   blockmd.ToMarkdown(note.Content),
	}
}

func (r *Registry) searchNotes(in searchInput) any {
	hits, err := r.store.Search(in.Query)
	if err != nil {
		return ErrorResult{Error: err.Error()}
	}
	if hits == nil {
		hits = []models.SearchHit{}
	}
	return hits
}

func (r *Registry) createNote(in createNoteInput) any {
	if in.Title == "" {
		return ErrorResult{Error: "title is required"}
	}
	note, err := r.store.CreateNote(store.CreateNoteParams{
		Title:    in.Title,
		Content:  blockmd.ToBlocks(in.Content),
		FolderID: in.FolderID,
	})
	if err != nil {
		return ErrorResult{Error: err.Error()}
	}
	return CreatedResult{Success: true, NoteID: note.ID}
}

func (r *Registry) updateNote(in updateNoteInput) any {
	note, err := r.store.GetNote(in.NoteID)
	if err != nil {
		return ErrorResult{Error: "Note not found"}
	}
	return r.gateContentUpdate(note, blockmd.ToBlocks(in.Markdown), in.Title)
}

func (r *Registry) updateTitle(in updateTitleInput) any {
	if in.Title == "" {
		return ErrorResult{Error: "title is required"}
	}
	note, err := r.store.GetNote(in.NoteID)
	if err != nil {
		return ErrorResult{Error: "Note not found"}
	}
	return r.gateTitleUpdate(note, in.Title)
}

func (r *Registry) listFolders() any {
	folders, err := r.store.ListFolders()
	if err != nil {
		return ErrorResult{Error: err.Error()}
	}
	out := make([]folderSummary, len(folders))
	for i, f := range folders {
		out[i] = folderSummary{ID: f.ID, Name: f.Name, ParentID: f.ParentID}
	}
	return out
}

func (r *Registry) createFolder(in createFolderInput) any {
	folder, err := r.store.CreateFolder(in.Name, in.ParentID)
	if err != nil {
		return ErrorResult{Error: err.Error()}
	}
	return CreatedResult{Success: true, FolderID: folder.ID}
}

func (r *Registry) renameFolder(in renameFolderInput) any {
	if err := r.store.RenameFolder(in.FolderID, in.Name); err != nil {
		return ErrorResult{Error: err.Error()}
	}
	return SuccessResult{Success: true}
}

func (r *Registry) deleteFolder(in deleteFolderInput) any {
	if err := r.store.DeleteFolder(in.FolderID); err != nil {
		return ErrorResult{Error: err.Error()}
	}
	return SuccessResult{Success: true}
}

func (r *Registry) moveNote(in moveNoteInput) any {
	if err := r.store.SetNoteFolder(in.NoteID, in.FolderID); err != nil {
		return ErrorResult{Error: err.Error()}
	}
	return SuccessResult{Success: true}
}
