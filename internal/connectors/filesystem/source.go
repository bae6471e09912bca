// Package filesystem reads document files from a local directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.FileSource = (*Source)(nil)

// DefaultSettle is how long a file must stay unchanged before Watch emits it.
const DefaultSettle = 500 * time.Millisecond

// ErrWatcherClosed is returned by Watch after Close.
var ErrWatcherClosed = errors.New("filesystem: watcher closed")

// Source lists files with a supported extension under root.
// Hidden files and directories are skipped.
type Source struct {
	root       string
	extensions map[string]bool
	settle     time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a source over root accepting the given extensions
// (lowercase, with dot). An empty list accepts every file.
func New(root string, extensions []string) *Source {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Source{root: root, extensions: exts, settle: DefaultSettle}
}

// Root returns the absolute directory.
func (s *Source) Root() string {
	return s.root
}

// Scan walks root and sends every accepted file path.
func (s *Source) Scan(ctx context.Context) (<-chan string, <-chan error) {
	paths := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(paths)
		defer close(errs)

		info, err := os.Stat(s.root)
		if err != nil {
			errs <- fmt.Errorf("reading %s: %w", s.root, err)
			return
		}
		if !info.IsDir() {
			errs <- fmt.Errorf("%s is not a directory", s.root)
			return
		}

		err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("filesystem: skipping %s: %v", path, err)
				return nil
			}
			if path != s.root && isHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !s.accepts(path) {
				return nil
			}
			select {
			case paths <- path:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			errs <- err
		}
	}()

	return paths, errs
}

// Watch reports files created or written under root. Events for the same
// path are coalesced until it has been quiet for the settle period.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrWatcherClosed
	}
	if s.watcher != nil {
		s.mu.Unlock()
		return nil, errors.New("filesystem: already watching")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	s.watcher = watcher
	s.mu.Unlock()

	if err := s.addDirs(watcher, s.root); err != nil {
		_ = s.Close()
		return nil, err
	}

	out := make(chan string)
	go s.watchLoop(ctx, watcher, out)
	return out, nil
}

// Close stops any active watch.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	return err
}

func (s *Source) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- string) {
	defer close(out)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(s.settle / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if path, ok := s.handleEvent(watcher, event); ok {
				pending[path] = time.Now()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("filesystem: watch error: %v", err)
		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < s.settle {
					continue
				}
				delete(pending, path)
				select {
				case out <- path:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleEvent returns the file path to emit for event, if any. New
// directories are added to the watch.
func (s *Source) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) (string, bool) {
	if isHidden(event.Name) {
		return "", false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) && watcher != nil {
			if err := s.addDirs(watcher, event.Name); err != nil {
				logger.Warn("filesystem: watching %s: %v", event.Name, err)
			}
		}
		return "", false
	}
	if !s.accepts(event.Name) {
		return "", false
	}
	return event.Name, true
}

func (s *Source) addDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != s.root && isHidden(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func (s *Source) accepts(path string) bool {
	if len(s.extensions) == 0 {
		return true
	}
	return s.extensions[strings.ToLower(filepath.Ext(path))]
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
