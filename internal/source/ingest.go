package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/starford/grove/internal/blockmd"
	"github.com/starford/grove/internal/models"
	"github.com/starford/grove/internal/store"
)

const (
	// maxContentChars caps how much page text lands in the note.
	maxContentChars = 25000
	maxFetchBytes   = 4 << 20
	fetchTimeout    = 30 * time.Second
)

// Ingester fetches a web page and captures it as a note: the source link,
// the extracted text, and an empty Notes section for later annotation.
type Ingester struct {
	store  store.Store
	client *http.Client
	logger *slog.Logger
}

func NewIngester(st store.Store, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		store:  st,
		client: &http.Client{Timeout: fetchTimeout},
		logger: logger,
	}
}

// Ingest fetches url, extracts its readable content, and creates a note in
// folderID (or unfiled when empty). The note is AI-managed so the agent can
// append to its Notes section in later conversations.
func (ing *Ingester) Ingest(ctx context.Context, url, folderID string) (*models.Note, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("source: unsupported URL scheme: %s", url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("source: build request: %w", err)
	}
	req.Header.Set("User-Agent", "grove/1.0 (+note capture)")
	req.Header.Set("Accept", "text/html")

	resp, err := ing.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source: fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("source: parse %s: %w", url, err)
	}

	page := extractHTML(doc)
	if page.Text == "" {
		return nil, fmt.Errorf("source: no readable content at %s", url)
	}

	title := page.Title
	if title == "" {
		title = url
	}

	note, err := ing.store.CreateNote(store.CreateNoteParams{
		Title:     title,
		Content:   buildSourceContent(url, page.Text),
		ManagedBy: models.ManagedByAI,
		SourceURL: url,
		FolderID:  folderID,
	})
	if err != nil {
		return nil, fmt.Errorf("source: create note: %w", err)
	}

	ing.logger.Info("source captured",
		slog.String("url", url),
		slog.String("note_id", note.ID),
		slog.Int("chars", len(page.Text)))
	return note, nil
}

// buildSourceContent assembles the captured note: a link back to the
// source, the page text under "Raw Content", and an empty "Notes" section.
func buildSourceContent(url, text string) []models.Block {
	if len(text) > maxContentChars {
		text = text[:maxContentChars] + "\n\n[content truncated]"
	}

	blocks := []models.Block{
		sourceLinkBlock(url),
		blockmd.NewBlock(models.BlockParagraph, "", models.BlockProps{}),
		blockmd.NewBlock(models.BlockHeading, "Raw Content", models.BlockProps{Level: 2}),
	}
	blocks = append(blocks, blockmd.ToBlocks(text)...)
	blocks = append(blocks,
		blockmd.NewBlock(models.BlockHeading, "Notes", models.BlockProps{Level: 2}),
		blockmd.NewBlock(models.BlockParagraph, "", models.BlockProps{}),
	)
	return blocks
}

func sourceLinkBlock(url string) models.Block {
	return models.Block{
		ID:   uuid.NewString(),
		Type: models.BlockParagraph,
		Content: []models.InlineText{
			{Type: "text", Text: "Source: "},
			{
				Type:    "link",
				Href:    url,
				Content: []models.InlineText{{Type: "text", Text: url}},
			},
		},
		Children: []models.Block{},
	}
}
