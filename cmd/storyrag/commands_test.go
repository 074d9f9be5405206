package main

import (
	"strings"
	"testing"

	"github.com/sagarzanwar92/rag-story-research/internal/config"
)

func TestIngestRequiresExactlyOneSource(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"ingest"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error when no source flag is given")
	}

	rootCmd.SetArgs([]string{"ingest", "--file", "a.txt", "--url", "http://example.com"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error when both source flags are given")
	}
}

func TestResolveModels(t *testing.T) {
	cfg := config.Config{}
	cfg.Engine.Provider = "ollama"
	cfg.Ollama.ChatModel = "llama3.2:1b"
	cfg.Ollama.JudgeModel = "llama3.2:1b"
	cfg.Ollama.EmbedModel = "nomic-embed-text"
	cfg.OpenAI.ChatModel = "gpt-4o-mini"
	cfg.OpenAI.EmbedModel = "text-embedding-3-small"

	chat, judge, embed := resolveModels(cfg)
	if chat != "llama3.2:1b" || judge != "llama3.2:1b" || embed != "nomic-embed-text" {
		t.Errorf("ollama models = %q %q %q", chat, judge, embed)
	}

	cfg.Engine.Provider = "openai"
	chat, judge, embed = resolveModels(cfg)
	if chat != "gpt-4o-mini" || judge != "gpt-4o-mini" || embed != "text-embedding-3-small" {
		t.Errorf("openai models = %q %q %q", chat, judge, embed)
	}
}

func TestColorize(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	if result := colorize(colorGreen, "hello"); strings.Contains(result, "\033") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}

	noColor = false
	if result := colorize(colorGreen, "hello"); !strings.Contains(result, "\033") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}
