// Package document keeps processed documents in memory for the API server.
// Upload results live here between processing and retrieval or export;
// nothing survives a restart.
package document

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pipeline"
)

// ErrNotFound is returned when no document exists under the given ID.
var ErrNotFound = errors.New("document not found")

// Document is one stored processing result.
type Document struct {
	ID        uuid.UUID                  `json:"id"`
	Filename  string                     `json:"filename"`
	Result    *pipeline.StructuredResult `json:"result"`
	CreatedAt time.Time                  `json:"created_at"`
}

// Filter narrows List results. The zero value matches everything.
type Filter struct {
	// Type keeps only documents of this document type.
	Type string

	// Query keeps documents whose filename, recognized text, or any
	// matched canonical term contains it, case-insensitively.
	Query string

	// Limit caps the number of results; 0 means no cap.
	Limit int
}

// Stats summarizes the store contents.
type Stats struct {
	Documents  int            `json:"documents"`
	Entities   int            `json:"entities"`
	ByCategory map[string]int `json:"by_category"`
	ByType     map[string]int `json:"by_document_type"`
}

// Store is an in-memory document store safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	docs  map[uuid.UUID]*Document
	order []uuid.UUID // insertion order, oldest first
	limit int
}

// NewStore creates a store keeping at most limit documents; 0 means
// unlimited. When full, the oldest documents are evicted first.
func NewStore(limit int) *Store {
	if limit < 0 {
		limit = 0
	}
	return &Store{
		docs:  make(map[uuid.UUID]*Document),
		limit: limit,
	}
}

// Save stores a result under a fresh ID and returns the new document.
func (s *Store) Save(filename string, res *pipeline.StructuredResult) (*Document, error) {
	if res == nil {
		return nil, errors.New("nil result")
	}
	doc := &Document{
		ID:        uuid.New(),
		Filename:  filename,
		Result:    res,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	s.order = append(s.order, doc.ID)
	s.evictLocked()
	return doc, nil
}

func (s *Store) evictLocked() {
	if s.limit <= 0 {
		return
	}
	for len(s.order) > s.limit {
		delete(s.docs, s.order[0])
		s.order = s.order[1:]
	}
}

// Get returns the document with the given ID.
func (s *Store) Get(id uuid.UUID) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

// Delete removes the document with the given ID.
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns matching documents, newest first.
func (s *Store) List(f Filter) []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Document, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		doc := s.docs[s.order[i]]
		if !f.matches(doc) {
			continue
		}
		out = append(out, doc)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

func (f Filter) matches(doc *Document) bool {
	if f.Type != "" && doc.Result.DocumentType != f.Type {
		return false
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(doc.Filename), query) ||
		strings.Contains(strings.ToLower(doc.Result.RawText), query) {
		return true
	}
	for _, e := range doc.Result.Entities {
		if strings.Contains(strings.ToLower(e.Canonical), query) {
			return true
		}
	}
	return false
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Clear removes every document.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[uuid.UUID]*Document)
	s.order = nil
}

// Stats aggregates entity and document type counts over the store.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Documents:  len(s.docs),
		ByCategory: make(map[string]int),
		ByType:     make(map[string]int),
	}
	for _, doc := range s.docs {
		stats.ByType[doc.Result.DocumentType]++
		stats.Entities += len(doc.Result.Entities)
		for _, e := range doc.Result.Entities {
			stats.ByCategory[string(e.Category)]++
		}
	}
	return stats
}
