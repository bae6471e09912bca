package driving

import (
	"context"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

// DocumentService manages document registration on behalf of the upload flow.
type DocumentService interface {
	// Register records a new document for the file at path.
	Register(ctx context.Context, path, name string, inCorpus bool) (*domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// List returns documents matching the filter.
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)

	// SetCorpus changes corpus membership.
	SetCorpus(ctx context.Context, documentID string, inCorpus bool) error

	// GetText returns the extracted text of a document.
	GetText(ctx context.Context, documentID string) (string, error)
}
