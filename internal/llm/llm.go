// Package llm defines the chat-completion provider boundary consumed by
// the agent loop, with a single production implementation backed by the
// Anthropic Messages API.
package llm

import (
	"context"
	"encoding/json"
)

// StopReason is the provider's signal for why a response ended. Any value
// outside the known set must be treated as unexpected by callers.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopToolUse   StopReason = "tool_use"
	StopPauseTurn StopReason = "pause_turn"
)

// Content block kinds appearing in requests and responses.
const (
	BlockText                = "text"
	BlockThinking            = "thinking"
	BlockToolUse             = "tool_use"
	BlockToolResult          = "tool_result"
	BlockServerToolUse       = "server_tool_use"
	BlockWebSearchToolResult = "web_search_tool_result"
)

// ContentBlock is one element of a message's content array. Which fields
// are set depends on Type; unknown kinds round-trip through the raw fields
// untouched.
type ContentBlock struct {
	Type string `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// thinking
	Thinking string `json:"thinking,omitempty"`

	// tool_use / server_tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result / web_search_tool_result
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
}

// Message is one turn of conversation history.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// TextMessage builds a message with a single plain text block.
func TextMessage(role, text string) Message {
	return Message{Role: role, Content: []ContentBlock{{Type: BlockText, Text: text}}}
}

// Tool declares an operation the model may request. A tool is either a
// custom tool (Name, Description, InputSchema) executed by the caller, or a
// provider-executed server tool (ServerType, Name, MaxUses).
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
	ServerType  string
	MaxUses     int
}

// MarshalJSON emits the wire shape appropriate for the tool flavor.
func (t Tool) MarshalJSON() ([]byte, error) {
	if t.ServerType != "" {
		obj := map[string]any{"type": t.ServerType, "name": t.Name}
		if t.MaxUses > 0 {
			obj["max_uses"] = t.MaxUses
		}
		return json.Marshal(obj)
	}
	schema := t.InputSchema
	if schema == nil {
		schema = map[string]any{"type": "object", "properties": map[string]any{}, "required": []string{}}
	}
	return json.Marshal(map[string]any{
		"name":         t.Name,
		"description":  t.Description,
		"input_schema": schema,
	})
}

// WebSearchResult is one entry of a web_search_tool_result block's content.
type WebSearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	PageAge string `json:"page_age,omitempty"`
}

// Request is a single chat-completion call.
type Request struct {
	Model     string
	System    string
	MaxTokens int
	Messages  []Message
	Tools     []Tool
}

// Response is the provider's reply to one Request.
type Response struct {
	ID         string
	Model      string
	StopReason StopReason
	Content    []ContentBlock
}

// Client is the capability the agent loop depends on. Production code uses
// *Anthropic; tests substitute a scripted fake.
type Client interface {
	CreateMessage(ctx context.Context, req Request) (*Response, error)
}
