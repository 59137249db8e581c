package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/grove/internal/llm"
	"github.com/starford/grove/internal/models"
	"github.com/starford/grove/internal/store"
)

const systemPrompt = `You are Lore, a knowledge agent inside Grove, a personal note-taking platform.
You have full access to the user's notes and can create, read, search, and edit them.
You can also search the web to bring in new information.

Personality: You are a capable chief-of-staff. Concise, thoughtful, proactive.
When editing notes, always describe what you did and why.
When referencing a note, mention its title.
When you create or edit a note, briefly summarize the change in your response.`

const (
	defaultMaxRounds = 25
	defaultMaxTokens = 4096
	titleMaxTokens   = 20
)

// errRoundLimit ends a turn that kept requesting tools past the cap.
var errRoundLimit = errors.New("agent: tool round limit reached")

// Config controls the models and limits used by the loop.
type Config struct {
	Model      string
	TitleModel string
	MaxTokens  int
	MaxRounds  int
}

// Loop drives one conversation turn at a time: it calls the model, executes
// requested tools, feeds results back, and persists the transcript.
type Loop struct {
	client llm.Client
	store  store.Store
	cfg    Config
	logger *slog.Logger
}

func NewLoop(client llm.Client, st store.Store, cfg Config, logger *slog.Logger) *Loop {
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = defaultMaxRounds
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{client: client, store: st, cfg: cfg, logger: logger}
}

// Run executes a full agent turn for one user message. The user message is
// persisted before the model is first called, and exactly one assistant
// message is persisted at the end of the turn, on every path including
// provider errors and the round limit.
func (l *Loop) Run(ctx context.Context, sessionID, userMessage string) error {
	history, err := l.store.ListMessages(sessionID)
	if err != nil {
		return fmt.Errorf("agent: load history: %w", err)
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, llm.TextMessage(m.Role, m.Content))
	}
	msgs = append(msgs, llm.TextMessage(models.RoleUser, userMessage))

	if _, err := l.store.AppendUserMessage(sessionID, userMessage); err != nil {
		return fmt.Errorf("agent: persist user message: %w", err)
	}

	reg := NewRegistry(l.store, sessionID)
	tools := Catalog()

	var (
		recorded []models.ToolCall
		thinking string
		final    string
	)

	runErr := func() error {
		for round := 0; round < l.cfg.MaxRounds; round++ {
			resp, err := l.client.CreateMessage(ctx, llm.Request{
				Model:     l.cfg.Model,
				System:    systemPrompt,
				MaxTokens: l.cfg.MaxTokens,
				Messages:  msgs,
				Tools:     tools,
			})
			if err != nil {
				return fmt.Errorf("agent: model call: %w", err)
			}

			for _, b := range resp.Content {
				if b.Type == llm.BlockThinking && b.Thinking != "" {
					thinking = b.Thinking
				}
			}

			switch resp.StopReason {
			case llm.StopPauseTurn:
				// The API paused a long-running turn (e.g. mid web search).
				// Hand the content back unchanged so the model continues.
				msgs = append(msgs, llm.Message{Role: models.RoleAssistant, Content: resp.Content})
				continue

			case llm.StopEndTurn:
				final = joinTextBlocks(resp.Content)
				recorded = append(recorded, extractWebSearches(resp.Content)...)
				return nil

			case llm.StopToolUse:
				msgs = append(msgs, llm.Message{Role: models.RoleAssistant, Content: resp.Content})
				results := make([]llm.ContentBlock, 0, len(resp.Content))
				for _, b := range resp.Content {
					if b.Type != llm.BlockToolUse {
						continue
					}
					start := time.Now()
					out := reg.Dispatch(ctx, b.Name, b.Input)
					outJSON, err := json.Marshal(out)
					if err != nil {
						outJSON, _ = json.Marshal(ErrorResult{Error: err.Error()})
					}
					recorded = append(recorded, models.ToolCall{
						ToolName:   b.Name,
						Input:      normalizeInput(b.Input),
						Output:     outJSON,
						DurationMs: time.Since(start).Milliseconds(),
					})
					// tool_result content is the JSON result as a string.
					quoted, _ := json.Marshal(string(outJSON))
					results = append(results, llm.ContentBlock{
						Type:      llm.BlockToolResult,
						ToolUseID: b.ID,
						Content:   quoted,
					})
				}
				msgs = append(msgs, llm.Message{Role: models.RoleUser, Content: results})

			default:
				l.logger.Warn("unexpected stop reason, ending turn",
					slog.String("session_id", sessionID),
					slog.String("stop_reason", string(resp.StopReason)))
				return nil
			}
		}
		return errRoundLimit
	}()

	if runErr != nil {
		if errors.Is(runErr, errRoundLimit) {
			final = "Sorry, I couldn't finish that: the request needed more tool calls than a single turn allows. Try breaking it into smaller steps."
		} else {
			final = fmt.Sprintf("Sorry, something went wrong while processing your request: %v", runErr)
		}
		l.logger.Error("agent turn failed",
			slog.String("session_id", sessionID),
			slog.String("error", runErr.Error()))
	}

	// First exchange gets an auto-generated title. Best effort, never
	// retried; the placeholder stays on failure.
	if runErr == nil && len(history) == 0 {
		l.generateTitle(ctx, sessionID, userMessage)
	}

	if _, err := l.store.AppendAssistantMessage(sessionID, final, thinking, recorded); err != nil {
		return fmt.Errorf("agent: persist assistant message: %w", err)
	}
	return runErr
}

func (l *Loop) generateTitle(ctx context.Context, sessionID, userMessage string) {
	model := l.cfg.TitleModel
	if model == "" {
		model = l.cfg.Model
	}
	prompt := fmt.Sprintf(
		"Generate a short 4-6 word title for a conversation that starts with: %q. Reply with ONLY the title, no quotes.",
		truncate(userMessage, 100))

	resp, err := l.client.CreateMessage(ctx, llm.Request{
		Model:     model,
		MaxTokens: titleMaxTokens,
		Messages:  []llm.Message{llm.TextMessage(models.RoleUser, prompt)},
	})
	if err != nil {
		l.logger.Warn("title generation failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		return
	}

	title := "Conversation"
	if len(resp.Content) > 0 && resp.Content[0].Type == llm.BlockText {
		if t := strings.TrimSpace(resp.Content[0].Text); t != "" {
			title = t
		}
	}
	if err := l.store.RenameConversation(sessionID, title); err != nil {
		l.logger.Warn("title update failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}
}

func joinTextBlocks(blocks []llm.ContentBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		if b.Type == llm.BlockText {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// extractWebSearches turns provider-executed web searches into tool call
// records so transcripts show them alongside local tool calls. Duration is
// zero: the search ran inside the provider, not here.
func extractWebSearches(blocks []llm.ContentBlock) []models.ToolCall {
	var calls []models.ToolCall
	for _, b := range blocks {
		if b.Type != llm.BlockServerToolUse || b.Name != ToolWebSearch {
			continue
		}
		var results []llm.WebSearchResult
		for _, rb := range blocks {
			if rb.Type == llm.BlockWebSearchToolResult && rb.ToolUseID == b.ID {
				// Malformed result content degrades to an empty list.
				_ = json.Unmarshal(rb.Content, &results)
				break
			}
		}

		type searchResult struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Snippet string `json:"snippet,omitempty"`
		}
		out := struct {
			Query   string         `json:"query"`
			Results []searchResult `json:"results"`
		}{Results: make([]searchResult, 0, len(results))}

		var in struct {
			Query string `json:"query"`
		}
		_ = json.Unmarshal(b.Input, &in)
		out.Query = in.Query

		for _, r := range results {
			sr := searchResult{Title: r.Title, URL: r.URL}
			if r.PageAge != "" {
				sr.Snippet = "Updated: " + r.PageAge
			}
			out.Results = append(out.Results, sr)
		}

		outJSON, _ := json.Marshal(out)
		calls = append(calls, models.ToolCall{
			ToolName:   ToolWebSearch,
			Input:      normalizeInput(b.Input),
			Output:     outJSON,
			DurationMs: 0,
		})
	}
	return calls
}

func normalizeInput(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("{}")
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
