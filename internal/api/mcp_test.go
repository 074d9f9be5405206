package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sagarzanwar92/rag-story-research/internal/rag"
	"github.com/sagarzanwar92/rag-story-research/internal/retrieval"
)

type mockMCPRetriever struct {
	passages []retrieval.Passage
	gotTopK  int
	err      error
}

func (m *mockMCPRetriever) Retrieve(_ context.Context, _ string, topK int) ([]retrieval.Passage, error) {
	m.gotTopK = topK
	return m.passages, m.err
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("got %d content items, want 1", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return text.Text
}

func TestMCPTool_AskStory(t *testing.T) {
	deps := MCPDeps{
		Asker: &mockAsker{
			askFn: func(prompt string, history []rag.Turn) (string, error) {
				if prompt != "Who is the protagonist?" {
					t.Errorf("prompt = %q", prompt)
				}
				if history != nil {
					t.Errorf("history = %+v, want nil", history)
				}
				return "Anne Elliot", nil
			},
		},
	}
	handler := mcpAskStory(deps)

	res, err := handler(context.Background(), makeCallToolRequest("ask_story", map[string]interface{}{
		"prompt": "Who is the protagonist?",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if got := resultText(t, res); got != "Anne Elliot" {
		t.Errorf("result = %q", got)
	}
}

func TestMCPTool_AskStory_MissingPrompt(t *testing.T) {
	handler := mcpAskStory(MCPDeps{})
	res, err := handler(context.Background(), makeCallToolRequest("ask_story", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for missing prompt")
	}
}

func TestMCPTool_AskStory_ServiceFailure(t *testing.T) {
	deps := MCPDeps{
		Asker: &mockAsker{
			askFn: func(string, []rag.Turn) (string, error) {
				return "", errors.New("model unavailable")
			},
		},
	}
	handler := mcpAskStory(deps)

	res, err := handler(context.Background(), makeCallToolRequest("ask_story", map[string]interface{}{
		"prompt": "q",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error")
	}
	if got := resultText(t, res); !strings.Contains(got, "model unavailable") {
		t.Errorf("error text = %q", got)
	}
}

func TestMCPTool_SearchCorpus(t *testing.T) {
	retriever := &mockMCPRetriever{passages: []retrieval.Passage{
		{ID: "c1", DocID: "d1", Text: "the year was 1815", Score: 0.92},
	}}
	handler := mcpSearchCorpus(MCPDeps{Retriever: retriever})

	res, err := handler(context.Background(), makeCallToolRequest("search_corpus", map[string]interface{}{
		"query": "when is it set",
		"limit": 5,
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if retriever.gotTopK != 5 {
		t.Errorf("topK = %d, want 5", retriever.gotTopK)
	}

	var results []struct {
		ID    string  `json:"id"`
		Text  string  `json:"text"`
		Score float32 `json:"score"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &results); err != nil {
		t.Fatalf("decoding results: %v", err)
	}
	if len(results) != 1 || results[0].ID != "c1" || results[0].Text != "the year was 1815" {
		t.Errorf("results = %+v", results)
	}
}

func TestMCPTool_SearchCorpus_DefaultLimit(t *testing.T) {
	retriever := &mockMCPRetriever{}
	handler := mcpSearchCorpus(MCPDeps{Retriever: retriever})

	res, err := handler(context.Background(), makeCallToolRequest("search_corpus", map[string]interface{}{
		"query": "q",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if retriever.gotTopK != 3 {
		t.Errorf("topK = %d, want default 3", retriever.gotTopK)
	}
	if got := resultText(t, res); got != "[]" {
		t.Errorf("empty search = %q, want []", got)
	}
}
