package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sagarzanwar92/rag-story-research/internal/retrieval"
	"github.com/sagarzanwar92/rag-story-research/internal/storage"
)

// BatchEmbedder produces one embedding per input text.
// Implemented by retrieval.Embedder.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorInserter stores embedded chunks. Implemented by retrieval.SQLiteStore.
type VectorInserter interface {
	Insert(records []retrieval.Record) error
}

// DocumentSaver records ingested sources. Implemented by storage.Store.
type DocumentSaver interface {
	SaveDocument(d storage.Document) error
}

// Pipeline extracts, chunks, embeds, and stores one source at a time.
type Pipeline struct {
	embedder BatchEmbedder
	vectors  VectorInserter
	docs     DocumentSaver
	splitter *Splitter
	client   *http.Client
	logger   *slog.Logger
}

// NewPipeline wires a Pipeline with the given chunking parameters.
func NewPipeline(embedder BatchEmbedder, vectors VectorInserter, docs DocumentSaver, chunkSize, overlap int) *Pipeline {
	return &Pipeline{
		embedder: embedder,
		vectors:  vectors,
		docs:     docs,
		splitter: NewSplitter(chunkSize, overlap),
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   slog.Default(),
	}
}

// IngestFile ingests a local PDF or text file.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (storage.Document, error) {
	ex, err := ExtractFile(path)
	if err != nil {
		return storage.Document{}, err
	}
	return p.ingest(ctx, ex, path)
}

// IngestURL fetches a page and ingests its readable text.
func (p *Pipeline) IngestURL(ctx context.Context, url string) (storage.Document, error) {
	ex, err := ExtractURL(ctx, p.client, url)
	if err != nil {
		return storage.Document{}, err
	}
	return p.ingest(ctx, ex, url)
}

func (p *Pipeline) ingest(ctx context.Context, ex Extracted, source string) (storage.Document, error) {
	chunks := p.splitter.Split(ex.Text)
	if len(chunks) == 0 {
		return storage.Document{}, fmt.Errorf("no text extracted from %s", source)
	}

	p.logger.Info("embedding chunks", "source", source, "chunks", len(chunks))
	vectors, err := p.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return storage.Document{}, fmt.Errorf("embedding %s: %w", source, err)
	}

	doc := storage.Document{
		ID:         uuid.New().String(),
		Title:      ex.Title,
		Source:     source,
		Pages:      ex.Pages,
		ChunkCount: len(chunks),
		CreatedAt:  time.Now().UTC(),
	}

	records := make([]retrieval.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = retrieval.Record{
			ID:        uuid.New().String(),
			DocID:     doc.ID,
			Seq:       i,
			Text:      chunk,
			Embedding: vectors[i],
			CreatedAt: doc.CreatedAt,
		}
	}
	if err := p.vectors.Insert(records); err != nil {
		return storage.Document{}, fmt.Errorf("storing vectors for %s: %w", source, err)
	}
	if err := p.docs.SaveDocument(doc); err != nil {
		return storage.Document{}, fmt.Errorf("saving document %s: %w", source, err)
	}

	p.logger.Info("document ingested", "id", doc.ID, "title", doc.Title, "chunks", doc.ChunkCount)
	return doc, nil
}
