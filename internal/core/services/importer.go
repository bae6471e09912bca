package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/core/ports/driving"
	"github.com/custodia-labs/plagscan/internal/logger"
)

// Ensure ImportService implements the interface.
var _ driving.ImportService = (*ImportService)(nil)

// SourceFactory opens a FileSource over a directory.
type SourceFactory func(dir string) driven.FileSource

// ImportService registers files found by a FileSource.
type ImportService struct {
	documents  driving.DocumentService
	processing driving.ProcessingService
	newSource  SourceFactory
}

// NewImportService creates an import service. Processing is optional
// (can be nil); without it ImportOptions.Submit is ignored.
func NewImportService(
	documents driving.DocumentService,
	processing driving.ProcessingService,
	newSource SourceFactory,
) *ImportService {
	return &ImportService{documents: documents, processing: processing, newSource: newSource}
}

// Import registers the supported files under dir once.
func (s *ImportService) Import(ctx context.Context, dir string, opts domain.ImportOptions) (*domain.ImportResult, error) {
	if s.documents == nil || s.newSource == nil {
		return nil, domain.ErrNotImplemented
	}

	src := s.newSource(dir)
	defer src.Close()

	known, err := s.knownPaths(ctx)
	if err != nil {
		return nil, err
	}

	result := &domain.ImportResult{Root: src.Root()}
	paths, errs := src.Scan(ctx)
	for path := range paths {
		result.Add(s.importFile(ctx, path, opts, known))
	}
	if err := <-errs; err != nil {
		return result, fmt.Errorf("scanning %s: %w", src.Root(), err)
	}

	logger.Info("import: %s registered=%d skipped=%d failed=%d",
		result.Root, result.Registered, result.Skipped, result.Failed)
	return result, nil
}

// Watch imports files as they are written under dir.
func (s *ImportService) Watch(
	ctx context.Context,
	dir string,
	opts domain.ImportOptions,
	onFile func(domain.ImportedFile),
) error {
	if s.documents == nil || s.newSource == nil {
		return domain.ErrNotImplemented
	}

	src := s.newSource(dir)
	defer src.Close()

	known, err := s.knownPaths(ctx)
	if err != nil {
		return err
	}

	paths, err := src.Watch(ctx)
	if err != nil {
		return err
	}
	for path := range paths {
		f := s.importFile(ctx, path, opts, known)
		if onFile != nil {
			onFile(f)
		}
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// importFile registers one path unless it is already known. A failed
// submission is reported but the document stays registered.
func (s *ImportService) importFile(
	ctx context.Context,
	path string,
	opts domain.ImportOptions,
	known *pathSet,
) domain.ImportedFile {
	f := domain.ImportedFile{Path: path}
	if !known.add(path) {
		f.Skipped = true
		return f
	}

	doc, err := s.documents.Register(ctx, path, "", opts.InCorpus)
	if err != nil {
		known.remove(path)
		logger.Warn("import: %s: %v", path, err)
		f.Error = err.Error()
		return f
	}
	f.DocumentID = doc.ID

	if opts.Submit && s.processing != nil {
		if _, err := s.processing.Submit(ctx, doc.ID); err != nil {
			logger.Warn("import: submitting %s: %v", doc.ID, err)
			f.Error = err.Error()
		}
	}
	return f
}

func (s *ImportService) knownPaths(ctx context.Context) (*pathSet, error) {
	docs, err := s.documents.List(ctx, domain.DocumentFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	set := &pathSet{paths: make(map[string]bool, len(docs))}
	for i := range docs {
		set.paths[docs[i].FilePath] = true
	}
	return set, nil
}

// pathSet tracks registered file paths.
type pathSet struct {
	mu    sync.Mutex
	paths map[string]bool
}

// add reports whether path was new.
func (p *pathSet) add(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paths[path] {
		return false
	}
	p.paths[path] = true
	return true
}

func (p *pathSet) remove(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.paths, path)
}
