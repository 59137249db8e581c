package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/grove/internal/apperr"
	"github.com/starford/grove/internal/models"
)

const defaultConversationTitle = "New conversation"

// CreateConversation starts a new agent chat session with a placeholder
// title; the agent replaces it after the first exchange.
func (db *DB) CreateConversation() (*models.Conversation, error) {
	now := time.Now()
	c := &models.Conversation{
		ID:        uuid.NewString(),
		Title:     defaultConversationTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := db.conn.Exec(`
		INSERT INTO conversations (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)
	`, c.ID, c.Title, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: insert conversation: %w", err)
	}
	return c, nil
}

// GetConversation returns a session by id.
func (db *DB) GetConversation(id string) (*models.Conversation, error) {
	var c models.Conversation
	err := db.conn.QueryRow(`
		SELECT id, title, created_at, updated_at FROM conversations WHERE id = ?
	`, id).Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get conversation: %w", err)
	}
	return &c, nil
}

// ListConversations returns all sessions, most recently active first.
func (db *DB) ListConversations() ([]models.Conversation, error) {
	rows, err := db.conn.Query(`SELECT id, title, created_at, updated_at FROM conversations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list conversations: %w", err)
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RenameConversation sets a session's title. A blank title falls back to
// the placeholder.
func (db *DB) RenameConversation(id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultConversationTitle
	}
	res, err := db.conn.Exec(`UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?`,
		title, time.Now(), id)
	if err != nil {
		return fmt.Errorf("store: rename conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteConversation removes a session and its transcript.
func (db *DB) DeleteConversation(id string) error {
	if _, err := db.GetConversation(id); err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM messages WHERE session_id = ?`, id)
	_, _ = tx.Exec(`DELETE FROM conversations WHERE id = ?`, id)

	return tx.Commit()
}

// AppendUserMessage appends a user turn to a session's transcript.
func (db *DB) AppendUserMessage(sessionID, content string) (*models.Message, error) {
	return db.appendMessage(models.Message{
		SessionID: sessionID,
		Role:      models.RoleUser,
		Content:   content,
	})
}

// AppendAssistantMessage appends an assistant turn, including the captured
// reasoning trace and tool call records for UI replay.
func (db *DB) AppendAssistantMessage(sessionID, content, thinking string, toolCalls []models.ToolCall) (*models.Message, error) {
	return db.appendMessage(models.Message{
		SessionID:       sessionID,
		Role:            models.RoleAssistant,
		Content:         content,
		ThinkingContent: thinking,
		ToolCalls:       toolCalls,
	})
}

func (db *DB) appendMessage(m models.Message) (*models.Message, error) {
	if _, err := db.GetConversation(m.SessionID); err != nil {
		return nil, err
	}

	m.ID = uuid.NewString()
	m.CreatedAt = time.Now()

	toolCallsJSON := ""
	if len(m.ToolCalls) > 0 {
		raw, err := json.Marshal(m.ToolCalls)
		if err != nil {
			return nil, fmt.Errorf("store: marshal tool calls: %w", err)
		}
		toolCallsJSON = string(raw)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO messages (id, session_id, role, content, thinking, tool_calls, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.SessionID, m.Role, m.Content, m.ThinkingContent, toolCallsJSON, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: insert message: %w", err)
	}
	if _, err := tx.Exec(`UPDATE conversations SET updated_at = ? WHERE id = ?`, m.CreatedAt, m.SessionID); err != nil {
		return nil, fmt.Errorf("store: touch conversation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return &m, nil
}

// ListMessages returns a session's transcript in replay order (creation
// order, insertion order as tiebreak).
func (db *DB) ListMessages(sessionID string) ([]models.Message, error) {
	rows, err := db.conn.Query(`
		SELECT id, session_id, role, content, thinking, tool_calls, created_at
		FROM messages WHERE session_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: list messages: %w", err)
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		var toolCallsJSON string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.ThinkingContent, &toolCallsJSON, &m.CreatedAt); err != nil {
			return nil, err
		}
		if toolCallsJSON != "" {
			if err := json.Unmarshal([]byte(toolCallsJSON), &m.ToolCalls); err != nil {
				return nil, fmt.Errorf("store: unmarshal tool calls: %w", err)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
