package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sagarzanwar92/rag-story-research/internal/retrieval"
)

// MCPRetriever abstracts passage search for the MCP layer.
type MCPRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]retrieval.Passage, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Asker     Asker
	Retriever MCPRetriever
}

// NewMCPServer creates an MCP server exposing the corpus over stdio.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"storyrag",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("storyrag answers questions about a story research corpus, grounded in retrieved passages."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("ask_story",
			mcp.WithDescription("Answer a question about the corpus, grounded in retrieved passages."),
			mcp.WithString("prompt", mcp.Description("The question to answer"), mcp.Required()),
		),
		mcpAskStory(deps),
	)

	s.AddTool(
		mcp.NewTool("search_corpus",
			mcp.WithDescription("Semantically search the corpus and return the most relevant passages."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of passages (default 3)")),
		),
		mcpSearchCorpus(deps),
	)

	return s
}

func mcpAskStory(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prompt, err := req.RequireString("prompt")
		if err != nil {
			return mcpError("prompt is required"), nil
		}

		answer, err := deps.Asker.Ask(ctx, prompt, nil)
		if err != nil {
			return mcpError(fmt.Sprintf("ask failed: %v", err)), nil
		}
		return mcpText(answer), nil
	}
}

func mcpSearchCorpus(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", 3)
		if limit <= 0 {
			limit = 3
		}
		if limit > 20 {
			limit = 20
		}

		passages, err := deps.Retriever.Retrieve(ctx, query, limit)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}
		if len(passages) == 0 {
			return mcpText("[]"), nil
		}

		type passageResult struct {
			ID    string  `json:"id"`
			DocID string  `json:"doc_id"`
			Text  string  `json:"text"`
			Score float32 `json:"score"`
		}
		results := make([]passageResult, len(passages))
		for i, p := range passages {
			results[i] = passageResult{ID: p.ID, DocID: p.DocID, Text: p.Text, Score: p.Score}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
