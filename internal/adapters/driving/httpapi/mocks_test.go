package httpapi

import (
	"context"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

type mockDocuments struct {
	docs   map[string]*domain.Document
	err    error
	filter domain.DocumentFilter
}

func (m *mockDocuments) Register(_ context.Context, _, _ string, _ bool) (*domain.Document, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockDocuments) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *mockDocuments) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	m.filter = filter
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Document, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockDocuments) SetCorpus(_ context.Context, _ string, _ bool) error {
	return m.err
}

func (m *mockDocuments) GetText(_ context.Context, _ string) (string, error) {
	return "", m.err
}

type mockProcessing struct {
	mode        domain.SubmitMode
	err         error
	reprocessed []string
}

func (m *mockProcessing) Submit(_ context.Context, id string) (*domain.SubmitResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.SubmitResult{DocumentID: id, Mode: m.mode, Status: domain.StatusQueued}, nil
}

func (m *mockProcessing) SubmitBatch(ctx context.Context, ids []string) ([]domain.SubmitResult, error) {
	out := make([]domain.SubmitResult, 0, len(ids))
	for _, id := range ids {
		r, err := m.Submit(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockProcessing) Reprocess(ctx context.Context, id string) (*domain.SubmitResult, error) {
	m.reprocessed = append(m.reprocessed, id)
	return m.Submit(ctx, id)
}

type mockDetector struct {
	verdict *domain.Verdict
	err     error
}

func (m *mockDetector) DetectPlagiarism(_ context.Context, _ string) (*domain.Verdict, error) {
	return m.verdict, m.err
}

func (m *mockDetector) FindCandidates(_ context.Context, _ *domain.Document) (*domain.CandidateSet, error) {
	return &domain.CandidateSet{}, m.err
}

type mockReports struct {
	report *domain.CorpusReport
	err    error
}

func (m *mockReports) Report(_ context.Context) (*domain.CorpusReport, error) {
	return m.report, m.err
}
