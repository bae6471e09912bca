package mcp

import (
	"context"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

// mockDetector implements driving.Detector for testing.
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

// mockProcessingService implements driving.ProcessingService for testing.
type mockProcessingService struct {
	result    *domain.SubmitResult
	err       error
	submitted []string
}

func (m *mockProcessingService) Submit(_ context.Context, id string) (*domain.SubmitResult, error) {
	m.submitted = append(m.submitted, id)
	return m.result, m.err
}

func (m *mockProcessingService) SubmitBatch(ctx context.Context, ids []string) ([]domain.SubmitResult, error) {
	results := make([]domain.SubmitResult, 0, len(ids))
	for _, id := range ids {
		r, err := m.Submit(ctx, id)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, nil
}

func (m *mockProcessingService) Reprocess(ctx context.Context, id string) (*domain.SubmitResult, error) {
	return m.Submit(ctx, id)
}

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	text      string
	err       error
	lastQuery domain.DocumentFilter
}

func (m *mockDocumentService) Register(_ context.Context, _, _ string, _ bool) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	m.lastQuery = filter
	return m.documents, m.err
}

func (m *mockDocumentService) SetCorpus(_ context.Context, _ string, _ bool) error {
	return m.err
}

func (m *mockDocumentService) GetText(_ context.Context, _ string) (string, error) {
	return m.text, m.err
}

type mockReportService struct {
	report *domain.CorpusReport
	err    error
}

func (m *mockReportService) Report(_ context.Context) (*domain.CorpusReport, error) {
	return m.report, m.err
}
