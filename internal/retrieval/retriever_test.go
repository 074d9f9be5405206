package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/sagarzanwar92/rag-story-research/internal/engine"
)

// embedOnlyEngine implements engine.Engine for embedder tests; only Embed
// is configurable, the rest are inert.
type embedOnlyEngine struct {
	embedFn func(ctx context.Context, model, text string) ([]float32, error)
}

func (m *embedOnlyEngine) Chat(context.Context, string, []engine.Message) (string, error) {
	return "", nil
}

func (m *embedOnlyEngine) Embed(ctx context.Context, model, text string) ([]float32, error) {
	return m.embedFn(ctx, model, text)
}

func (m *embedOnlyEngine) IsRunning(context.Context) bool            { return true }
func (m *embedOnlyEngine) ListModels(context.Context) ([]string, error) { return nil, nil }
func (m *embedOnlyEngine) HasModel(context.Context, string) bool     { return true }
func (m *embedOnlyEngine) PullModel(context.Context, string, func(engine.PullProgress)) error {
	return nil
}

// mockVectorStore implements VectorStore with function fields.
type mockVectorStore struct {
	searchFn func(vector []float32, topK int) ([]ScoredRecord, error)
	insertFn func(records []Record) error
}

func (m *mockVectorStore) Insert(records []Record) error {
	if m.insertFn != nil {
		return m.insertFn(records)
	}
	return nil
}
func (m *mockVectorStore) Search(vector []float32, topK int) ([]ScoredRecord, error) {
	return m.searchFn(vector, topK)
}
func (m *mockVectorStore) Count() (int, error)           { return 0, nil }
func (m *mockVectorStore) DeleteByDoc(docID string) error { return nil }

func TestRetrieve(t *testing.T) {
	eng := &embedOnlyEngine{
		embedFn: func(_ context.Context, _, _ string) ([]float32, error) {
			return []float32{1, 0, 0}, nil
		},
	}

	var gotTopK int
	store := &mockVectorStore{
		searchFn: func(_ []float32, topK int) ([]ScoredRecord, error) {
			gotTopK = topK
			return []ScoredRecord{
				{Record: Record{ID: "c2", DocID: "d1", Text: "best"}, Score: 0.9},
				{Record: Record{ID: "c1", DocID: "d1", Text: "next"}, Score: 0.5},
			}, nil
		},
	}

	r := NewRetriever(NewEmbedder(eng, "nomic-embed-text"), store)
	passages, err := r.Retrieve(context.Background(), "when is the story set?", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if gotTopK != 3 {
		t.Errorf("topK passed to store = %d, want 3", gotTopK)
	}
	if len(passages) != 2 {
		t.Fatalf("got %d passages, want 2", len(passages))
	}
	// Rank order preserved.
	if passages[0].Text != "best" || passages[1].Text != "next" {
		t.Errorf("passages out of rank order: %+v", passages)
	}
}

func TestRetrieve_EmbedFailure(t *testing.T) {
	eng := &embedOnlyEngine{
		embedFn: func(context.Context, string, string) ([]float32, error) {
			return nil, errors.New("engine down")
		},
	}
	store := &mockVectorStore{
		searchFn: func([]float32, int) ([]ScoredRecord, error) {
			t.Fatal("search must not be called when embedding fails")
			return nil, nil
		},
	}

	r := NewRetriever(NewEmbedder(eng, "nomic-embed-text"), store)
	if _, err := r.Retrieve(context.Background(), "q", 3); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	eng := &embedOnlyEngine{
		embedFn: func(_ context.Context, _, text string) ([]float32, error) {
			// Distinguishable per-text vector.
			return []float32{float32(len(text))}, nil
		},
	}

	e := NewEmbedder(eng, "nomic-embed-text")
	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vecs))
	}
	for i, want := range []float32{1, 2, 3} {
		if vecs[i][0] != want {
			t.Errorf("vecs[%d] = %v, want [%v]", i, vecs[i], want)
		}
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	e := NewEmbedder(&embedOnlyEngine{}, "nomic-embed-text")
	vecs, err := e.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch(nil): %v", err)
	}
	if vecs != nil {
		t.Errorf("got %v, want nil", vecs)
	}
}
