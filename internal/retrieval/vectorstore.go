package retrieval

import "time"

// VectorStore is the interface for vector storage and similarity search.
// The default implementation uses SQLite with brute-force cosine similarity,
// which is fine at single-document-corpus scale.
type VectorStore interface {
	// Insert adds chunk records to the store.
	Insert(records []Record) error

	// Search returns the top-K records most similar to the query vector,
	// highest score first.
	Search(vector []float32, topK int) ([]ScoredRecord, error)

	// Count returns the number of stored chunk records.
	Count() (int, error)

	// DeleteByDoc removes all chunks belonging to the given document.
	DeleteByDoc(docID string) error
}

// Record is one embedded text chunk in the vector store.
type Record struct {
	ID        string
	DocID     string
	Seq       int // chunk position within the source document
	Text      string
	Embedding []float32
	CreatedAt time.Time
}

// ScoredRecord is a Record with a similarity score attached.
type ScoredRecord struct {
	Record
	Score float32
}
