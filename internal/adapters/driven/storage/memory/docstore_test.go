package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

func TestNewDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.documents)
}

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	score := 88.5
	doc := &domain.Document{
		ID:          "doc-1",
		Name:        "Essay",
		FilePath:    "/uploads/essay.txt",
		Embedding:   []float32{0.1, 0.2},
		InCorpus:    true,
		Status:      domain.StatusCompleted,
		Originality: &score,
	}
	require.NoError(t, store.SaveDocument(ctx, doc))

	saved, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Essay", saved.Name)
	assert.Equal(t, []float32{0.1, 0.2}, saved.Embedding)
	assert.Equal(t, 88.5, *saved.Originality)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestDocumentStore_SaveDocument_Invalid(t *testing.T) {
	store := NewDocumentStore()
	assert.ErrorIs(t, store.SaveDocument(context.Background(), &domain.Document{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SaveDocument(context.Background(), nil), domain.ErrInvalidInput)
}

func TestDocumentStore_GetDocument_NotFound(t *testing.T) {
	store := NewDocumentStore()
	_, err := store.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_GetDocument_ReturnsCopy(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", Name: "A"}))

	got, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	got.Name = "B"

	again, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
}

func TestDocumentStore_UpdateDocument(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", Status: domain.StatusQueued}))

	updated, err := store.UpdateDocument(ctx, "doc-1", func(d *domain.Document) error {
		d.Status = domain.StatusProcessing
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, updated.Status)

	saved, _ := store.GetDocument(ctx, "doc-1")
	assert.Equal(t, domain.StatusProcessing, saved.Status)
}

func TestDocumentStore_UpdateDocument_ErrorDiscardsChanges(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", Status: domain.StatusQueued}))

	boom := errors.New("boom")
	_, err := store.UpdateDocument(ctx, "doc-1", func(d *domain.Document) error {
		d.Status = domain.StatusFailed
		return boom
	})
	assert.ErrorIs(t, err, boom)

	saved, _ := store.GetDocument(ctx, "doc-1")
	assert.Equal(t, domain.StatusQueued, saved.Status)
}

func TestDocumentStore_UpdateDocument_NotFound(t *testing.T) {
	store := NewDocumentStore()
	_, err := store.UpdateDocument(context.Background(), "missing", func(*domain.Document) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListCorpusMembers(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	base := time.Now()

	_ = store.SaveDocument(ctx, &domain.Document{ID: "a", InCorpus: true, CreatedAt: base})
	_ = store.SaveDocument(ctx, &domain.Document{ID: "b", InCorpus: false, CreatedAt: base.Add(time.Second)})
	_ = store.SaveDocument(ctx, &domain.Document{ID: "c", InCorpus: true, CreatedAt: base.Add(2 * time.Second)})
	_ = store.SaveDocument(ctx, &domain.Document{ID: "d", InCorpus: true, CreatedAt: base.Add(3 * time.Second)})

	members, err := store.ListCorpusMembers(ctx, "c", 0)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "a", members[0].ID)
	assert.Equal(t, "d", members[1].ID)

	limited, err := store.ListCorpusMembers(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "a", limited[0].ID)
}

func TestDocumentStore_ListDocuments_Filter(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	old := time.Now().Add(-time.Hour)

	_ = store.SaveDocument(ctx, &domain.Document{ID: "a", Status: domain.StatusQueued, CreatedAt: old})
	_ = store.SaveDocument(ctx, &domain.Document{ID: "b", Status: domain.StatusFailed, InCorpus: true})
	_ = store.SaveDocument(ctx, &domain.Document{ID: "c", Status: domain.StatusQueued})

	all, err := store.ListDocuments(ctx, domain.DocumentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	failed, _ := store.ListDocuments(ctx, domain.DocumentFilter{Status: domain.StatusFailed})
	require.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].ID)

	corpus, _ := store.ListDocuments(ctx, domain.DocumentFilter{CorpusOnly: true})
	assert.Len(t, corpus, 1)

	stale, _ := store.ListDocuments(ctx, domain.DocumentFilter{
		Status:        domain.StatusQueued,
		UpdatedBefore: time.Now().Add(-30 * time.Minute),
	})
	require.Len(t, stale, 1)
	assert.Equal(t, "a", stale[0].ID)
}

func TestDocumentStore_DeleteDocument(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	_ = store.SaveDocument(ctx, &domain.Document{ID: "doc-1"})

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))
	_, err := store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ConcurrentUpdates(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	zero := 0.0
	_ = store.SaveDocument(ctx, &domain.Document{ID: "doc-1", Originality: &zero})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.UpdateDocument(ctx, "doc-1", func(d *domain.Document) error {
				v := *d.Originality + 1
				d.Originality = &v
				return nil
			})
		}()
	}
	wg.Wait()

	doc, _ := store.GetDocument(ctx, "doc-1")
	assert.Equal(t, 50.0, *doc.Originality)
}
