package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
)

// Ensure TextStore implements the interface.
var _ driven.TextStore = (*TextStore)(nil)

// TextStore is an in-memory implementation of driven.TextStore.
// Handles are "mem://<document id>".
type TextStore struct {
	mu    sync.RWMutex
	texts map[string]string
}

// NewTextStore creates a new in-memory text store.
func NewTextStore() *TextStore {
	return &TextStore{texts: make(map[string]string)}
}

// Put stores text for a document.
func (s *TextStore) Put(_ context.Context, documentID, text string) (string, error) {
	if documentID == "" {
		return "", domain.ErrInvalidInput
	}
	handle := "mem://" + documentID
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts[handle] = text
	return handle, nil
}

// Get returns the text behind a handle.
func (s *TextStore) Get(_ context.Context, handle string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.texts[handle]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}
