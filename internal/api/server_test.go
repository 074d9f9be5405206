package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sagarzanwar92/rag-story-research/internal/logstore"
	"github.com/sagarzanwar92/rag-story-research/internal/rag"
	"github.com/sagarzanwar92/rag-story-research/internal/storage"
)

type mockAsker struct {
	askFn func(prompt string, history []rag.Turn) (string, error)
}

func (m *mockAsker) Ask(_ context.Context, prompt string, history []rag.Turn) (string, error) {
	return m.askFn(prompt, history)
}

type mockDocs struct {
	docs    []storage.Document
	err     error
	deleted []string
}

func (m *mockDocs) GetDocument(id string) (storage.Document, error) {
	for _, d := range m.docs {
		if d.ID == id {
			return d, nil
		}
	}
	return storage.Document{}, storage.ErrNotFound
}

func (m *mockDocs) ListDocuments(limit int) ([]storage.Document, error) {
	return m.docs, m.err
}

func (m *mockDocs) CountDocuments() (int, error) {
	return len(m.docs), m.err
}

func (m *mockDocs) DeleteDocument(id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

type mockChunkDeleter struct {
	deleted []string
	err     error
}

func (m *mockChunkDeleter) DeleteByDoc(docID string) error {
	m.deleted = append(m.deleted, docID)
	return m.err
}

type mockInteractions struct {
	records []logstore.InteractionRecord
	err     error
}

func (m *mockInteractions) ReadAll() ([]logstore.InteractionRecord, error) {
	return m.records, m.err
}

func newTestHandler(asker Asker, docs DocumentStore, vectors ChunkDeleter, log InteractionReader) http.Handler {
	if asker == nil {
		asker = &mockAsker{askFn: func(string, []rag.Turn) (string, error) { return "", nil }}
	}
	if docs == nil {
		docs = &mockDocs{}
	}
	if vectors == nil {
		vectors = &mockChunkDeleter{}
	}
	if log == nil {
		log = &mockInteractions{}
	}
	return NewHandler(asker, docs, vectors, log)
}

func TestAsk_Success(t *testing.T) {
	var gotPrompt string
	var gotHistory []rag.Turn
	asker := &mockAsker{
		askFn: func(prompt string, history []rag.Turn) (string, error) {
			gotPrompt, gotHistory = prompt, history
			return "Anne Elliot", nil
		},
	}
	h := newTestHandler(asker, nil, nil, nil)

	body := `{"prompt":"Who is the protagonist?","history":[{"role":"user","content":"A"},{"role":"assistant","content":"B"}]}`
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Answer != "Anne Elliot" {
		t.Errorf("answer = %q", resp.Answer)
	}
	if gotPrompt != "Who is the protagonist?" {
		t.Errorf("prompt = %q", gotPrompt)
	}
	if len(gotHistory) != 2 || gotHistory[0].Role != "user" || gotHistory[1].Content != "B" {
		t.Errorf("history = %+v", gotHistory)
	}
}

func TestAsk_ServiceFailureReturns500(t *testing.T) {
	asker := &mockAsker{
		askFn: func(string, []rag.Turn) (string, error) {
			return "", errors.New("generating answer: model unavailable")
		},
	}
	h := newTestHandler(asker, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"prompt":"q"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !strings.Contains(resp.Error.Message, "model unavailable") {
		t.Errorf("error message = %q, want the cause description", resp.Error.Message)
	}
}

func TestAsk_BadRequests(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	for _, body := range []string{`{not json`, `{"history":[]}`} {
		req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestDocs(t *testing.T) {
	docs := &mockDocs{docs: []storage.Document{
		{ID: "d1", Title: "Persuasion", Source: "persuasion.pdf", Pages: 249, ChunkCount: 120, CreatedAt: time.Now()},
	}}
	h := newTestHandler(nil, docs, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Count     int `json:"count"`
		Documents []struct {
			Title string `json:"title"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 1 || len(resp.Documents) != 1 || resp.Documents[0].Title != "Persuasion" {
		t.Errorf("response = %+v", resp)
	}
}

func TestDeleteDoc(t *testing.T) {
	docs := &mockDocs{docs: []storage.Document{
		{ID: "d1", Title: "Persuasion", ChunkCount: 120},
	}}
	vectors := &mockChunkDeleter{}
	h := newTestHandler(nil, docs, vectors, nil)

	req := httptest.NewRequest(http.MethodDelete, "/docs/d1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Deleted string `json:"deleted"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Deleted != "d1" || resp.Title != "Persuasion" {
		t.Errorf("response = %+v", resp)
	}
	if len(vectors.deleted) != 1 || vectors.deleted[0] != "d1" {
		t.Errorf("chunk deletes = %v, want [d1]", vectors.deleted)
	}
	if len(docs.deleted) != 1 || docs.deleted[0] != "d1" {
		t.Errorf("document deletes = %v, want [d1]", docs.deleted)
	}
}

func TestDeleteDoc_UnknownIDReturns404(t *testing.T) {
	docs := &mockDocs{}
	vectors := &mockChunkDeleter{}
	h := newTestHandler(nil, docs, vectors, nil)

	req := httptest.NewRequest(http.MethodDelete, "/docs/missing", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if len(vectors.deleted) != 0 || len(docs.deleted) != 0 {
		t.Error("nothing should be deleted for an unknown id")
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestInteractions_Limit(t *testing.T) {
	log := &mockInteractions{records: []logstore.InteractionRecord{
		{Query: "q1"}, {Query: "q2"}, {Query: "q3"},
	}}
	h := newTestHandler(nil, nil, nil, log)

	req := httptest.NewRequest(http.MethodGet, "/interactions?limit=2", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var records []logstore.InteractionRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// The most recent two, oldest first.
	if records[0].Query != "q2" || records[1].Query != "q3" {
		t.Errorf("records = %+v", records)
	}
}

func TestInteractions_InvalidLimit(t *testing.T) {
	h := newTestHandler(nil, nil, nil, &mockInteractions{})
	req := httptest.NewRequest(http.MethodGet, "/interactions?limit=nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
