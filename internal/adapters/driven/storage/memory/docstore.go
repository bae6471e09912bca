package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.Document
	now       func() time.Time
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*domain.Document),
		now:       time.Now,
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := doc.Clone()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	s.documents[doc.ID] = c
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc.Clone(), nil
}

// UpdateDocument applies fn to a copy of the document and stores it.
func (s *DocumentStore) UpdateDocument(
	_ context.Context,
	id string,
	fn func(doc *domain.Document) error,
) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := doc.Clone()
	if err := fn(c); err != nil {
		return nil, err
	}
	c.ID = id
	c.UpdatedAt = s.now()
	s.documents[id] = c
	return c.Clone(), nil
}

// ListCorpusMembers returns corpus members other than excludeID.
func (s *DocumentStore) ListCorpusMembers(_ context.Context, excludeID string, limit int) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Document
	for _, doc := range s.sorted() {
		if !doc.InCorpus || doc.ID == excludeID {
			continue
		}
		result = append(result, *doc.Clone())
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// ListDocuments returns documents matching the filter.
func (s *DocumentStore) ListDocuments(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Document
	for _, doc := range s.sorted() {
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		if filter.CorpusOnly && !doc.InCorpus {
			continue
		}
		if !filter.UpdatedBefore.IsZero() && !doc.UpdatedAt.Before(filter.UpdatedBefore) {
			continue
		}
		result = append(result, *doc.Clone())
		if filter.Limit > 0 && len(result) >= filter.Limit {
			break
		}
	}
	return result, nil
}

// DeleteDocument removes a document.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	return nil
}

// sorted returns documents oldest first (caller must hold lock).
func (s *DocumentStore) sorted() []*domain.Document {
	docs := make([]*domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs
}
