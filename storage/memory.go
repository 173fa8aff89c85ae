package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/richinex/docvision/model"
)

// InMemoryStorage implements DocumentStorage in process memory. Useful
// for tests and for embedding the engine without a database file.
type InMemoryStorage struct {
	mu        sync.RWMutex
	documents map[string]model.Document
}

// NewInMemoryStorage creates an empty in-memory document store.
func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{documents: make(map[string]model.Document)}
}

// SaveDocument inserts or replaces a document.
func (s *InMemoryStorage) SaveDocument(_ context.Context, doc model.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = doc
	return nil
}

// GetDocument returns a document by id.
func (s *InMemoryStorage) GetDocument(_ context.Context, id string) (model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return model.Document{}, fmt.Errorf("document %s not found", id)
	}
	return doc, nil
}

// GetAllDocuments returns every completed document, oldest first.
func (s *InMemoryStorage) GetAllDocuments(_ context.Context) ([]model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := []model.Document{}
	for _, doc := range s.documents {
		if doc.Status == model.DocumentCompleted {
			docs = append(docs, doc)
		}
	}
	sortByCreation(docs)
	return docs, nil
}

// ListDocuments returns all documents regardless of status.
func (s *InMemoryStorage) ListDocuments(_ context.Context) ([]model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := []model.Document{}
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	sortByCreation(docs)
	return docs, nil
}

// SearchDocuments returns documents whose name or summary contains query,
// case-insensitively.
func (s *InMemoryStorage) SearchDocuments(_ context.Context, query string) ([]model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	docs := []model.Document{}
	for _, doc := range s.documents {
		if strings.Contains(strings.ToLower(doc.Name), needle) ||
			strings.Contains(strings.ToLower(doc.Summary), needle) {
			docs = append(docs, doc)
		}
	}
	sortByCreation(docs)
	return docs, nil
}

// DeleteDocument removes a document.
func (s *InMemoryStorage) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return fmt.Errorf("document %s not found", id)
	}
	delete(s.documents, id)
	return nil
}

func sortByCreation(docs []model.Document) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
}

// Verify InMemoryStorage implements DocumentStorage
var _ DocumentStorage = (*InMemoryStorage)(nil)
