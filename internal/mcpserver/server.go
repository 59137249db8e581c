// Package mcpserver exposes the agent's note tools over the Model Context
// Protocol via stdio transport, so external LLM clients can work the same
// note store as the built-in chat agent.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/grove/internal/agent"
	"github.com/starford/grove/internal/llm"
)

// markdownFormat describes how note content maps to and from markdown for
// clients that want to write well-formed notes.
const markdownFormat = `# Grove Markdown Conventions

Notes are stored as structured blocks and exposed to tools as markdown.

- Headings: ` + "`#`" + ` through ` + "`###`" + ` map to heading blocks (levels 1-3).
- Bullets: lines starting with ` + "`- `" + ` or ` + "`* `" + `.
- Numbered items: lines starting with ` + "`1. `" + ` (any number).
- Checklists: ` + "`- [ ] `" + ` and ` + "`- [x] `" + `.
- Quotes: lines starting with ` + "`> `" + `.
- Everything else becomes a paragraph; blank lines separate blocks.

The conversion is intentionally lossy: nesting is flattened and unknown
markdown constructs degrade to plain paragraphs.
`

// Server wraps the MCP server with Grove's note tools.
type Server struct {
	mcp      *server.MCPServer
	registry *agent.Registry
}

// New creates an MCP server with every custom agent tool registered.
// Server-executed tools (web search) are provider features and are not
// exposed here.
func New(registry *agent.Registry) *Server {
	s := &Server{registry: registry}

	s.mcp = server.NewMCPServer(
		"Grove",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	for _, tool := range agent.Catalog() {
		if tool.ServerType != "" {
			continue
		}
		s.mcp.AddTool(newMCPTool(tool), s.dispatch(tool.Name))
	}

	s.mcp.AddResource(
		mcp.NewResource("grove://markdown-format", "Markdown Conventions",
			mcp.WithResourceDescription("How note blocks map to and from markdown."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMarkdownFormatResource,
	)

	return s
}

func newMCPTool(tool llm.Tool) mcp.Tool {
	schema, _ := json.Marshal(tool.InputSchema)
	return mcp.NewToolWithRawSchema(tool.Name, tool.Description, schema)
}

// dispatch adapts one agent tool into an MCP handler. Tool failures are
// reported as MCP tool errors, never transport errors.
func (s *Server) dispatch(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result := s.registry.Dispatch(ctx, name, input)
		if fail, ok := result.(agent.ErrorResult); ok {
			return mcp.NewToolResultError(fail.Error), nil
		}
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

func (s *Server) readMarkdownFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "grove://markdown-format",
			MIMEType: "text/markdown",
			Text:     markdownFormat,
		},
	}, nil
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}
