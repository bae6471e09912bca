package driven

import (
	"context"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

// DocumentStore persists documents and answers corpus queries.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// UpdateDocument loads a document, applies fn and persists the result
	// atomically. If fn returns an error nothing is written.
	UpdateDocument(ctx context.Context, id string, fn func(doc *domain.Document) error) (*domain.Document, error)

	// ListCorpusMembers returns corpus members other than excludeID,
	// oldest first. A limit of zero returns all of them.
	ListCorpusMembers(ctx context.Context, excludeID string, limit int) ([]domain.Document, error)

	// ListDocuments returns documents matching the filter, oldest first.
	ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)

	// DeleteDocument removes a document.
	DeleteDocument(ctx context.Context, id string) error
}
