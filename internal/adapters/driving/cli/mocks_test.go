package cli

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	docs       map[string]*domain.Document
	text       string
	registered []string
	corpusSet  map[string]bool
	lastFilter domain.DocumentFilter
}

func newMockDocumentService() *mockDocumentService {
	return &mockDocumentService{docs: map[string]*domain.Document{}, corpusSet: map[string]bool{}}
}

func (m *mockDocumentService) Register(_ context.Context, path, name string, inCorpus bool) (*domain.Document, error) {
	m.registered = append(m.registered, path)
	doc := &domain.Document{ID: "doc-new", Name: name, FilePath: path, InCorpus: inCorpus, Status: domain.StatusQueued}
	m.docs[doc.ID] = doc
	return doc, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *mockDocumentService) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	m.lastFilter = filter
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []domain.Document
	for _, id := range ids {
		d := m.docs[id]
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.CorpusOnly && !d.InCorpus {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockDocumentService) SetCorpus(_ context.Context, id string, inCorpus bool) error {
	if _, ok := m.docs[id]; !ok {
		return domain.ErrNotFound
	}
	m.corpusSet[id] = inCorpus
	return nil
}

func (m *mockDocumentService) GetText(_ context.Context, id string) (string, error) {
	if _, ok := m.docs[id]; !ok {
		return "", domain.ErrNotFound
	}
	return m.text, nil
}

// mockProcessingService implements driving.ProcessingService for testing.
type mockProcessingService struct {
	mode        domain.SubmitMode
	status      domain.ProcessingStatus
	missing     map[string]bool
	reprocessed []string
}

func (m *mockProcessingService) Submit(_ context.Context, id string) (*domain.SubmitResult, error) {
	if m.missing[id] {
		return nil, domain.ErrNotFound
	}
	res := &domain.SubmitResult{DocumentID: id, Mode: m.mode, Status: m.status}
	if m.mode == domain.SubmitAsync {
		res.TaskID = "task-" + id
		res.Status = domain.StatusQueued
	}
	return res, nil
}

func (m *mockProcessingService) SubmitBatch(ctx context.Context, ids []string) ([]domain.SubmitResult, error) {
	out := make([]domain.SubmitResult, 0, len(ids))
	for _, id := range ids {
		res, err := m.Submit(ctx, id)
		if err != nil {
			out = append(out, domain.SubmitResult{DocumentID: id, Err: err.Error()})
			continue
		}
		out = append(out, *res)
	}
	return out, nil
}

func (m *mockProcessingService) Reprocess(ctx context.Context, id string) (*domain.SubmitResult, error) {
	m.reprocessed = append(m.reprocessed, id)
	return m.Submit(ctx, id)
}

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

// mockReportService implements driving.ReportService for testing.
type mockReportService struct {
	report *domain.CorpusReport
}

func (m *mockReportService) Report(_ context.Context) (*domain.CorpusReport, error) {
	return m.report, nil
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.Settings
	values      map[string]string
	setErr      error
	validateErr error
	provider    domain.AIProvider
	model       string
	apiKey      string
	validated   bool
}

func (m *mockSettingsService) Get() domain.Settings { return m.settings }

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"cache.addr", "detection.shingle_size"}
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = p, model, apiKey
	m.settings.Embedding.Provider = p
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) ValidateEmbeddingConfig(_ context.Context) error {
	m.validated = true
	return m.validateErr
}

func (m *mockSettingsService) Path() string { return "/tmp/plagscan/config.toml" }

// mockWorkerPool implements driving.WorkerPool for testing.
type mockWorkerPool struct {
	ran bool
}

func (m *mockWorkerPool) Run(ctx context.Context) error {
	m.ran = true
	<-ctx.Done()
	return nil
}

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	started bool
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.started = true
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error { return nil }

type mockImportService struct {
	result     *domain.ImportResult
	err        error
	watched    []domain.ImportedFile
	watchErr   error
	watchCalls int
	lastDir    string
	lastOpts   domain.ImportOptions
}

func (m *mockImportService) Import(_ context.Context, dir string, opts domain.ImportOptions) (*domain.ImportResult, error) {
	m.lastDir = dir
	m.lastOpts = opts
	if m.result == nil {
		return &domain.ImportResult{Root: dir}, m.err
	}
	return m.result, m.err
}

func (m *mockImportService) Watch(_ context.Context, _ string, _ domain.ImportOptions, onFile func(domain.ImportedFile)) error {
	m.watchCalls++
	for _, f := range m.watched {
		onFile(f)
	}
	return m.watchErr
}

type testServices struct {
	documents  *mockDocumentService
	processing *mockProcessingService
	detector   *mockDetector
	reports    *mockReportService
	imports    *mockImportService
	settings   *mockSettingsService
	workers    *mockWorkerPool
	scheduler  *mockScheduler
}

// setupTestServices installs fresh mocks and resets command flags.
// The returned cleanup restores the previous services.
func setupTestServices() (*testServices, func()) {
	old := Services{
		Documents:  documentService,
		Processing: processingService,
		Detector:   detector,
		Reports:    reportService,
		Imports:    importService,
		Settings:   settingsService,
		Workers:    workerPool,
		Scheduler:  scheduler,
	}

	ts := &testServices{
		documents:  newMockDocumentService(),
		processing: &mockProcessingService{mode: domain.SubmitAsync, missing: map[string]bool{}},
		detector:   &mockDetector{},
		reports:    &mockReportService{report: &domain.CorpusReport{RiskLevels: map[string]int{}}},
		imports:    &mockImportService{},
		settings:   &mockSettingsService{settings: domain.DefaultSettings(), values: map[string]string{}},
		workers:    &mockWorkerPool{},
		scheduler:  &mockScheduler{},
	}
	SetServices(Services{
		Documents:  ts.documents,
		Processing: ts.processing,
		Detector:   ts.detector,
		Reports:    ts.reports,
		Imports:    ts.imports,
		Settings:   ts.settings,
		Workers:    ts.workers,
		Scheduler:  ts.scheduler,
	})
	resetFlags(rootCmd)

	return ts, func() {
		SetServices(old)
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
	}
}

// resetFlags restores every flag in the tree to its default so state
// from one Execute does not leak into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func completedDoc(id string, score float64) *domain.Document {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.Document{
		ID:          id,
		Name:        id + " essay",
		FilePath:    "/uploads/" + id + ".txt",
		Status:      domain.StatusCompleted,
		Originality: &score,
		Verdict:     &domain.Verdict{Risk: domain.RiskLow, Citations: 3.5},
		CreatedAt:   now,
		UpdatedAt:   now,
		CompletedAt: &now,
	}
}

// execute runs the root command with args and returns combined output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
