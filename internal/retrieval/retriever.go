package retrieval

import (
	"context"
	"fmt"
)

// Passage is a retrieved context passage with its similarity score.
// Passages are returned in retrieval rank order (best match first).
type Passage struct {
	ID    string
	DocID string
	Text  string
	Score float32
}

// Retriever combines embedding and vector search to find relevant passages.
type Retriever struct {
	embedder *Embedder
	store    VectorStore
}

// NewRetriever creates a Retriever backed by the given Embedder and VectorStore.
func NewRetriever(embedder *Embedder, store VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve embeds the query and returns the top-K most similar passages.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]Passage, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	scored, err := r.store.Search(vec, topK)
	if err != nil {
		return nil, fmt.Errorf("searching corpus: %w", err)
	}

	passages := make([]Passage, len(scored))
	for i, s := range scored {
		passages[i] = Passage{
			ID:    s.ID,
			DocID: s.DocID,
			Text:  s.Text,
			Score: s.Score,
		}
	}
	return passages, nil
}
