package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Document is one ingested source (a PDF, a text file, or a fetched URL).
// Its text lives in corpus_vectors as embedded chunks.
type Document struct {
	ID         string
	Title      string
	Source     string
	Pages      int
	ChunkCount int
	CreatedAt  time.Time
}
