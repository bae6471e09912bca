// Package file stores extracted text as UTF-8 files in a local directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.TextStore = (*Store)(nil)

// Store writes <dir>/<document id>.txt and uses the file path as handle.
type Store struct {
	dir string
}

// NewStore creates the directory if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: text directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating text directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Put writes the text atomically via a temporary file.
func (s *Store) Put(_ context.Context, documentID, text string) (string, error) {
	if documentID == "" || strings.ContainsAny(documentID, `/\`) {
		return "", fmt.Errorf("%w: bad document id %q", domain.ErrInvalidInput, documentID)
	}

	path := filepath.Join(s.dir, documentID+".txt")
	tmp, err := os.CreateTemp(s.dir, documentID+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating text file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing text file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing text file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("moving text file: %w", err)
	}
	return path, nil
}

// Get reads the text file behind a handle.
func (s *Store) Get(_ context.Context, handle string) (string, error) {
	data, err := os.ReadFile(handle)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("reading text file: %w", err)
	}
	return string(data), nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}
