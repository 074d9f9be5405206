// Package logstore persists the interaction history as a single JSON array
// on disk. The file is the audit pipeline's input, so the layout is a plain
// array of flat records rather than anything database-backed.
package logstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// InteractionRecord is one answered query with the context it was grounded on.
type InteractionRecord struct {
	Timestamp        string   `json:"timestamp"`
	Query            string   `json:"query"`
	RetrievedContext []string `json:"retrieved_context"`
	Answer           string   `json:"answer"`
}

// NewRecord builds an InteractionRecord stamped with the current UTC time.
func NewRecord(query string, retrievedContext []string, answer string) InteractionRecord {
	return InteractionRecord{
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		Query:            query,
		RetrievedContext: retrievedContext,
		Answer:           answer,
	}
}

// Store reads and appends interaction records in a JSON-array file.
// Access is serialised within the process; concurrent writers in other
// processes are not coordinated.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a Store backed by the file at path. The file is created
// on first Append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// ReadAll returns every record in file order. A missing file yields an
// empty slice. A file that cannot be parsed is treated as empty so that a
// damaged log never blocks new interactions; the damage is logged.
func (s *Store) ReadAll() ([]InteractionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

func (s *Store) readLocked() ([]InteractionRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []InteractionRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read interaction log: %w", err)
	}

	var records []InteractionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("interaction log is corrupt, starting over",
			"path", s.path, "error", err)
		return []InteractionRecord{}, nil
	}
	return records, nil
}

// Append adds a record to the log. The whole array is rewritten on every
// call; the log stays small enough that this beats maintaining a streaming
// append format the audit step would have to reassemble anyway.
func (s *Store) Append(rec InteractionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readLocked()
	if err != nil {
		return err
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode interaction log: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write interaction log: %w", err)
	}
	return nil
}
