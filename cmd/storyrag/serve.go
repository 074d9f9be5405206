package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/sagarzanwar92/rag-story-research/internal/api"
	"github.com/sagarzanwar92/rag-story-research/internal/config"
	"github.com/sagarzanwar92/rag-story-research/internal/engine"
	"github.com/sagarzanwar92/rag-story-research/internal/logstore"
	"github.com/sagarzanwar92/rag-story-research/internal/rag"
	"github.com/sagarzanwar92/rag-story-research/internal/retrieval"
	"github.com/sagarzanwar92/rag-story-research/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the question-answering server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func setupLogging(cfg config.Config) {
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func engineFromConfig(cfg config.Config) (engine.Engine, error) {
	return engine.Select(engine.SelectConfig{
		Provider:      cfg.Engine.Provider,
		OllamaBaseURL: cfg.Ollama.BaseURL,
		OpenAIBaseURL: cfg.OpenAI.BaseURL,
		OpenAIAPIKey:  cfg.OpenAI.APIKey,
	})
}

// resolveModels returns the chat, judge, and embedding model names for the
// configured provider. The OpenAI-compatible path has no separate judge
// model; the chat model judges too.
func resolveModels(cfg config.Config) (chat, judge, embed string) {
	if cfg.Engine.Provider == "openai" {
		return cfg.OpenAI.ChatModel, cfg.OpenAI.ChatModel, cfg.OpenAI.EmbedModel
	}
	return cfg.Ollama.ChatModel, cfg.Ollama.JudgeModel, cfg.Ollama.EmbedModel
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "storyrag version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := engineFromConfig(cfg)
	if err != nil {
		return err
	}
	chatModel, _, embedModel := resolveModels(cfg)
	if err := engine.EnsureReady(ctx, eng, os.Stderr, chatModel, embedModel); err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("closing storage", "error", err)
		}
	}()

	embedder := retrieval.NewEmbedder(eng, embedModel)
	vectorStore := retrieval.NewSQLiteStore(store.DB())
	retriever := retrieval.NewRetriever(embedder, vectorStore)
	interactions := logstore.NewStore(cfg.Storage.LogFile)
	svc := rag.NewService(eng, retriever, interactions, chatModel, cfg.Retrieval.TopK)

	handler := api.NewHandler(svc, store, vectorStore, interactions)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// MCP server over stdio, next to the HTTP API.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Asker:     svc,
		Retriever: retriever,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "storyrag listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
