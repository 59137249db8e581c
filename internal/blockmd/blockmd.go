// Package blockmd converts between block-structured note content and flat
// Markdown text.
//
// The conversion is intentionally lossy in both directions: ToMarkdown drops
// presentation details it cannot express, and ToBlocks produces one flat
// block per non-empty line without reconstructing nesting or multi-line
// constructs. Agent-authored content is simple prose and lists, so fidelity
// is traded for simplicity.
package blockmd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/grove/internal/models"
)

var orderedItemRe = regexp.MustCompile(`^\d+\. `)

// ToMarkdown renders a block tree as Markdown. Blocks with no extractable
// text produce no line. Children are rendered after their parent.
func ToMarkdown(blocks []models.Block) string {
	var lines []string
	for _, block := range blocks {
		text := InlineMarkdown(block.Content)
		switch block.Type {
		case models.BlockHeading:
			level := block.Props.Level
			if level < 1 {
				level = 1
			}
			lines = append(lines, strings.Repeat("#", level)+" "+text)
		case models.BlockBulletListItem:
			lines = append(lines, "- "+text)
		case models.BlockNumberedListItem:
			// Ordinal position is not computed; every item renders as "1.".
			lines = append(lines, "1. "+text)
		case models.BlockCheckListItem:
			mark := " "
			if block.Props.Checked {
				mark = "x"
			}
			lines = append(lines, fmt.Sprintf("- [%s] %s", mark, text))
		case models.BlockCodeBlock:
			lines = append(lines, "```\n"+text+"\n```")
		case models.BlockQuote:
			lines = append(lines, "> "+text)
		default:
			if text != "" {
				lines = append(lines, text)
			}
		}
		if len(block.Children) > 0 {
			lines = append(lines, ToMarkdown(block.Children))
		}
	}
	return strings.Join(lines, "\n\n")
}

// InlineMarkdown joins a block's text runs, applying bold/italic/code
// markers. Link runs render their nested text.
func InlineMarkdown(content []models.InlineText) string {
	var b strings.Builder
	for _, c := range content {
		switch c.Type {
		case "text":
			t := c.Text
			if c.Styles.Bold {
				t = "**" + t + "**"
			}
			if c.Styles.Italic {
				t = "*" + t + "*"
			}
			if c.Styles.Code {
				t = "`" + t + "`"
			}
			b.WriteString(t)
		case "link":
			b.WriteString(InlineMarkdown(c.Content))
		}
	}
	return b.String()
}

// BlockText extracts the plain text of a block's content runs, without
// style markers.
func BlockText(block models.Block) string {
	var b strings.Builder
	for _, c := range block.Content {
		switch c.Type {
		case "text":
			b.WriteString(c.Text)
		case "link":
			for _, n := range c.Content {
				if n.Type == "text" {
					b.WriteString(n.Text)
				}
			}
		}
	}
	return b.String()
}

// ToBlocks parses Markdown into a flat list of blocks, one per non-empty
// line. Lines are classified independently by prefix; code fences and
// nesting are not reassembled.
func ToBlocks(markdown string) []models.Block {
	var blocks []models.Block
	for _, line := range strings.Split(markdown, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		blocks = append(blocks, lineToBlock(line))
	}
	return blocks
}

func lineToBlock(line string) models.Block {
	switch {
	case strings.HasPrefix(line, "### "):
		return NewBlock(models.BlockHeading, line[4:], models.BlockProps{Level: 3})
	case strings.HasPrefix(line, "## "):
		return NewBlock(models.BlockHeading, line[3:], models.BlockProps{Level: 2})
	case strings.HasPrefix(line, "# "):
		return NewBlock(models.BlockHeading, line[2:], models.BlockProps{Level: 1})
	case strings.HasPrefix(line, "- [x] "), strings.HasPrefix(line, "- [X] "):
		return NewBlock(models.BlockCheckListItem, line[6:], models.BlockProps{Checked: true})
	case strings.HasPrefix(line, "- [ ] "):
		return NewBlock(models.BlockCheckListItem, line[6:], models.BlockProps{})
	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
		return NewBlock(models.BlockBulletListItem, line[2:], models.BlockProps{})
	case orderedItemRe.MatchString(line):
		return NewBlock(models.BlockNumberedListItem, orderedItemRe.ReplaceAllString(line, ""), models.BlockProps{})
	case strings.HasPrefix(line, "> "):
		return NewBlock(models.BlockQuote, line[2:], models.BlockProps{})
	default:
		return NewBlock(models.BlockParagraph, line, models.BlockProps{})
	}
}

// NewBlock builds a single flat block with a freshly generated id.
// Empty text yields an empty content array rather than an empty run.
func NewBlock(blockType, text string, props models.BlockProps) models.Block {
	var content []models.InlineText
	if text != "" {
		content = []models.InlineText{{Type: "text", Text: text}}
	}
	return models.Block{
		ID:       uuid.NewString(),
		Type:     blockType,
		Props:    props,
		Content:  content,
		Children: []models.Block{},
	}
}

// FlatBlock is one row of the flattened read model used for search indexing.
type FlatBlock struct {
	BlockID  string
	Type     string
	ParentID string
	Order    float64
	Text     string
}

// Flatten walks a block tree depth-first and returns one row per block with
// its extracted plain text. Child ordering keys sort between their parent
// and the parent's next sibling.
func Flatten(blocks []models.Block) []FlatBlock {
	return flatten(blocks, 0, "")
}

func flatten(blocks []models.Block, startOrder float64, parentID string) []FlatBlock {
	var out []FlatBlock
	for i, block := range blocks {
		order := startOrder + float64(i)
		out = append(out, FlatBlock{
			BlockID:  block.ID,
			Type:     block.Type,
			ParentID: parentID,
			Order:    order,
			Text:     BlockText(block),
		})
		if len(block.Children) > 0 {
			out = append(out, flatten(block.Children, order+0.1, block.ID)...)
		}
	}
	return out
}
