// Package api exposes the question-answering service over HTTP and MCP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sagarzanwar92/rag-story-research/internal/logstore"
	"github.com/sagarzanwar92/rag-story-research/internal/rag"
	"github.com/sagarzanwar92/rag-story-research/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Asker answers one question with history. Implemented by rag.Service.
type Asker interface {
	Ask(ctx context.Context, prompt string, history []rag.Turn) (string, error)
}

// DocumentStore reports and prunes the ingested corpus. Implemented by
// storage.Store.
type DocumentStore interface {
	GetDocument(id string) (storage.Document, error)
	ListDocuments(limit int) ([]storage.Document, error)
	CountDocuments() (int, error)
	DeleteDocument(id string) error
}

// ChunkDeleter removes a document's vectors. Implemented by
// retrieval.SQLiteStore.
type ChunkDeleter interface {
	DeleteByDoc(docID string) error
}

// InteractionReader exposes the interaction log. Implemented by logstore.Store.
type InteractionReader interface {
	ReadAll() ([]logstore.InteractionRecord, error)
}

// NewHandler returns the HTTP API.
func NewHandler(asker Asker, docs DocumentStore, vectors ChunkDeleter, log InteractionReader) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/ask", handleAsk(asker))
	r.Get("/docs", handleDocs(docs))
	r.Delete("/docs/{id}", handleDeleteDoc(docs, vectors))
	r.Get("/interactions", handleInteractions(log))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type askRequest struct {
	Prompt  string     `json:"prompt"`
	History []rag.Turn `json:"history"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func handleAsk(asker Asker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.Prompt == "" {
			httpError(w, http.StatusBadRequest, "prompt is required")
			return
		}

		answer, err := asker.Ask(r.Context(), req.Prompt, req.History)
		if err != nil {
			slog.Error("ask failed", "error", err)
			httpError(w, http.StatusInternalServerError, "%v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(askResponse{Answer: answer})
	}
}

func handleDocs(docs DocumentStore) http.HandlerFunc {
	type docInfo struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Source     string `json:"source"`
		Pages      int    `json:"pages,omitempty"`
		ChunkCount int    `json:"chunk_count"`
		CreatedAt  string `json:"created_at"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		list, err := docs.ListDocuments(100)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "listing documents: %v", err)
			return
		}
		count, err := docs.CountDocuments()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "counting documents: %v", err)
			return
		}

		out := make([]docInfo, len(list))
		for i, d := range list {
			out[i] = docInfo{
				ID:         d.ID,
				Title:      d.Title,
				Source:     d.Source,
				Pages:      d.Pages,
				ChunkCount: d.ChunkCount,
				CreatedAt:  d.CreatedAt.UTC().Format(time.RFC3339),
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"count":     count,
			"documents": out,
		})
	}
}

func handleDeleteDoc(docs DocumentStore, vectors ChunkDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		doc, err := docs.GetDocument(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "document %s not found", id)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "loading document: %v", err)
			return
		}

		if err := vectors.DeleteByDoc(id); err != nil {
			httpError(w, http.StatusInternalServerError, "deleting chunks: %v", err)
			return
		}
		if err := docs.DeleteDocument(id); err != nil {
			httpError(w, http.StatusInternalServerError, "deleting document: %v", err)
			return
		}
		slog.Info("document deleted", "id", id, "title", doc.Title, "chunks", doc.ChunkCount)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"deleted": id,
			"title":   doc.Title,
		})
	}
}

func handleInteractions(log InteractionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := log.ReadAll()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "reading interaction log: %v", err)
			return
		}

		limit := len(records)
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				httpError(w, http.StatusBadRequest, "invalid limit %q", raw)
				return
			}
			if n < limit {
				limit = n
			}
		}
		// Most recent records are at the end of the log.
		records = records[len(records)-limit:]

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	}
}

func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
		},
	})
}
