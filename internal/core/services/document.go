package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService registers uploaded files and manages corpus membership.
type DocumentService struct {
	docStore  driven.DocumentStore
	textStore driven.TextStore
	now       func() time.Time
}

// NewDocumentService creates a new document service.
// The text store is optional (can be nil); GetText then reports ErrNotImplemented.
func NewDocumentService(docStore driven.DocumentStore, textStore driven.TextStore) *DocumentService {
	return &DocumentService{docStore: docStore, textStore: textStore, now: time.Now}
}

// Register records a new queued document for the file at path.
// The name defaults to the file's base name.
func (s *DocumentService) Register(ctx context.Context, path, name string, inCorpus bool) (*domain.Document, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: file path required", domain.ErrInvalidInput)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, abs)
	}

	if name == "" {
		name = filepath.Base(abs)
	}
	now := s.now()
	doc := &domain.Document{
		ID:        uuid.New().String(),
		Name:      name,
		FilePath:  abs,
		InCorpus:  inCorpus,
		Status:    domain.StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.docStore.GetDocument(ctx, documentID)
}

// List returns documents matching the filter.
func (s *DocumentService) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
	}
	return s.docStore.ListDocuments(ctx, filter)
}

// SetCorpus changes corpus membership.
func (s *DocumentService) SetCorpus(ctx context.Context, documentID string, inCorpus bool) error {
	if s.docStore == nil {
		return domain.ErrNotImplemented
	}
	_, err := s.docStore.UpdateDocument(ctx, documentID, func(d *domain.Document) error {
		d.InCorpus = inCorpus
		return nil
	})
	return err
}

// GetText returns the extracted text of a document.
func (s *DocumentService) GetText(ctx context.Context, documentID string) (string, error) {
	if s.docStore == nil || s.textStore == nil {
		return "", domain.ErrNotImplemented
	}
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	if !doc.HasText() {
		return "", domain.ErrNoText
	}
	return s.textStore.Get(ctx, doc.TextPath)
}
