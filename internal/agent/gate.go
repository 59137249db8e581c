package agent

import (
	"fmt"

	"github.com/starford/grove/internal/models"
)

// The ownership gate. Notes managed by the AI are mutated directly; notes
// managed by the user never are. For user-managed notes the requested
// change is captured as a pending suggested edit with full before/after
// snapshots, and the model is told to wait for approval.

func (r *Registry) gateContentUpdate(note *models.Note, newContent []models.Block, newTitle string) any {
	if note.ManagedBy == models.ManagedByAI {
		if err := r.store.UpdateNoteContent(note.ID, newContent, newTitle); err != nil {
			return ErrorResult{Error: err.Error()}
		}
		return UpdateResult{Success: true, BlocksUpdated: len(newContent)}
	}

	afterTitle := newTitle
	if afterTitle == "" {
		afterTitle = note.Title
	}
	edit, err := r.store.CreateSuggestedEdit(models.SuggestedEdit{
		NoteID:    note.ID,
		SessionID: r.sessionID,
		EditType:  models.EditUpdateBlock,
		Before:    models.EditSnapshot{Title: note.Title, Content: note.Content},
		After:     models.EditSnapshot{Title: afterTitle, Content: newContent},
	})
	if err != nil {
		return ErrorResult{Error: err.Error()}
	}
	return PendingResult{
		PendingApproval: true,
		EditID:          edit.ID,
		Message:         fmt.Sprintf("This note is managed by the user. A suggested edit to %q was created and is awaiting approval.", note.Title),
	}
}

func (r *Registry) gateTitleUpdate(note *models.Note, newTitle string) any {
	if note.ManagedBy == models.ManagedByAI {
		if err := r.store.UpdateNoteTitle(note.ID, newTitle); err != nil {
			return ErrorResult{Error: err.Error()}
		}
		return SuccessResult{Success: true}
	}

	edit, err := r.store.CreateSuggestedEdit(models.SuggestedEdit{
		NoteID:    note.ID,
		SessionID: r.sessionID,
		EditType:  models.EditUpdateTitle,
		Before:    models.EditSnapshot{Title: note.Title},
		After:     models.EditSnapshot{Title: newTitle},
	})
	if err != nil {
		return ErrorResult{Error: err.Error()}
	}
	return PendingResult{
		PendingApproval: true,
		EditID:          edit.ID,
		Message:         fmt.Sprintf("This note is managed by the user. A suggested rename of %q was created and is awaiting approval.", note.Title),
	}
}
