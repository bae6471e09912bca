package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	memcache "github.com/custodia-labs/plagscan/internal/adapters/driven/cache/memory"
	memstore "github.com/custodia-labs/plagscan/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/core/ports/driving"
)

// essay returns n distinct words built from prefix, long enough to pass
// the minimum text length for n >= 20.
func essay(prefix string, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("%s%03d", prefix, i)
	}
	return strings.Join(words, " ")
}

// fixture bundles in-memory stores for service tests.
type fixture struct {
	t     *testing.T
	docs  *memstore.DocumentStore
	texts *memstore.TextStore
	cache *memcache.Cache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		t:     t,
		docs:  memstore.NewDocumentStore(),
		texts: memstore.NewTextStore(),
		cache: memcache.New(),
	}
}

// add stores a document, and its text when text is non-empty.
func (f *fixture) add(id, path, text string, inCorpus bool, embedding []float32) *domain.Document {
	f.t.Helper()
	ctx := context.Background()
	doc := &domain.Document{
		ID:        id,
		Name:      id,
		FilePath:  path,
		InCorpus:  inCorpus,
		Status:    domain.StatusQueued,
		Embedding: embedding,
	}
	if text != "" {
		handle, err := f.texts.Put(ctx, id, text)
		require.NoError(f.t, err)
		doc.TextPath = handle
	}
	require.NoError(f.t, f.docs.SaveDocument(ctx, doc))
	return doc
}

func (f *fixture) get(id string) *domain.Document {
	f.t.Helper()
	doc, err := f.docs.GetDocument(context.Background(), id)
	require.NoError(f.t, err)
	return doc
}

func (f *fixture) detector() *DetectorService {
	return f.detectorWith(domain.DefaultDetectionSettings())
}

func (f *fixture) detectorWith(settings domain.DetectionSettings) *DetectorService {
	return NewDetectorService(f.docs, f.texts, f.cache, settings, domain.DefaultSettings().Cache)
}

// --- Mock implementations ---

// mockExtractor implements driven.ExtractorRegistry with canned results.
type mockExtractor struct {
	mu    sync.Mutex
	texts map[string]string
	errs  map[string]error
	calls int
}

func newMockExtractor() *mockExtractor {
	return &mockExtractor{texts: make(map[string]string), errs: make(map[string]error)}
}

func (m *mockExtractor) Extract(_ context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err, ok := m.errs[path]; ok {
		return "", err
	}
	text, ok := m.texts[path]
	if !ok {
		return "", fmt.Errorf("%w: %w: %s", domain.ErrExtraction, domain.ErrUnsupportedType, path)
	}
	return text, nil
}

func (m *mockExtractor) Register(_ driven.TextExtractor) {}

func (m *mockExtractor) SupportedExtensions() []string { return []string{".txt"} }

func (m *mockExtractor) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockVectorizer implements driven.Vectorizer.
type mockVectorizer struct {
	vec []float32
	err error
}

func (m *mockVectorizer) Vectorize(_ context.Context, _ string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]float32(nil), m.vec...), nil
}

func (m *mockVectorizer) Dimensions() int { return len(m.vec) }

// mockPipeline implements driving.Pipeline, failing the first failures calls.
type mockPipeline struct {
	mu       sync.Mutex
	ids      []string
	failures int
	err      error
	onRun    func(id string)
}

func (m *mockPipeline) Process(_ context.Context, documentID string) error {
	m.mu.Lock()
	m.ids = append(m.ids, documentID)
	fail := m.failures > 0
	if fail {
		m.failures--
	}
	onRun := m.onRun
	m.mu.Unlock()

	if onRun != nil {
		onRun(documentID)
	}
	if fail {
		return m.err
	}
	return nil
}

func (m *mockPipeline) processed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ids...)
}

// mockQueue implements driven.TaskQueue and rejects every task.
type mockQueue struct {
	err error
}

func (m *mockQueue) Enqueue(_ context.Context, _ domain.Task) error { return m.err }

func (m *mockQueue) Dequeue(_ context.Context, _ time.Duration) (*domain.Task, error) {
	return nil, m.err
}

func (m *mockQueue) Close() error { return nil }

// Ensure mocks implement interfaces
var (
	_ driven.ExtractorRegistry = (*mockExtractor)(nil)
	_ driven.Vectorizer        = (*mockVectorizer)(nil)
	_ driven.TaskQueue         = (*mockQueue)(nil)
	_ driving.Pipeline         = (*mockPipeline)(nil)
)
