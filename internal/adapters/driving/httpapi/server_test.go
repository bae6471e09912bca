package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, ports Ports) *Server {
	t.Helper()
	if ports.Documents == nil {
		ports.Documents = &mockDocuments{docs: map[string]*domain.Document{}}
	}
	s, err := NewServer(ports)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var body map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestNewServer_RequiresDocuments(t *testing.T) {
	_, err := NewServer(Ports{})
	assert.ErrorIs(t, err, ErrMissingDocumentService)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Ports{})
	w, body := do(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestGetDocument(t *testing.T) {
	score := 73.5
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	docs := &mockDocuments{docs: map[string]*domain.Document{
		"doc-1": {
			ID:          "doc-1",
			Name:        "Essay",
			FilePath:    "/uploads/essay.docx",
			Status:      domain.StatusCompleted,
			Originality: &score,
			CompletedAt: &now,
		},
	}}
	s := newTestServer(t, Ports{Documents: docs})

	t.Run("found", func(t *testing.T) {
		w, body := do(t, s, http.MethodGet, "/api/v1/documents/doc-1")
		require.Equal(t, http.StatusOK, w.Code)
		data := body["data"].(map[string]any)
		assert.Equal(t, "doc-1", data["id"])
		assert.Equal(t, "essay.docx", data["file_name"])
		assert.Equal(t, "completed", data["status"])
		assert.InDelta(t, 73.5, data["originality"], 1e-9)
	})

	t.Run("missing is 404", func(t *testing.T) {
		w, body := do(t, s, http.MethodGet, "/api/v1/documents/nope")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, body["error"], "not found")
	})
}

func TestListDocuments(t *testing.T) {
	docs := &mockDocuments{docs: map[string]*domain.Document{
		"a": {ID: "a", Status: domain.StatusFailed, LastError: "boom"},
	}}
	s := newTestServer(t, Ports{Documents: docs})

	t.Run("passes filter", func(t *testing.T) {
		w, body := do(t, s, http.MethodGet, "/api/v1/documents?status=failed&corpus=true&limit=5")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, body["data"], 1)
		assert.Equal(t, domain.StatusFailed, docs.filter.Status)
		assert.True(t, docs.filter.CorpusOnly)
		assert.Equal(t, 5, docs.filter.Limit)
	})

	t.Run("bad limit", func(t *testing.T) {
		w, _ := do(t, s, http.MethodGet, "/api/v1/documents?limit=x")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVerdict(t *testing.T) {
	t.Run("returns verdict", func(t *testing.T) {
		det := &mockDetector{verdict: &domain.Verdict{
			DocumentID:  "doc-1",
			Originality: 100,
			Risk:        domain.RiskVeryLow,
			Message:     "original",
		}}
		s := newTestServer(t, Ports{Detector: det})
		w, body := do(t, s, http.MethodGet, "/api/v1/documents/doc-1/verdict")
		require.Equal(t, http.StatusOK, w.Code)
		data := body["data"].(map[string]any)
		assert.Equal(t, "very_low", data["risk_level"])
		assert.InDelta(t, 100.0, data["originality"], 1e-9)
	})

	t.Run("short text is 422", func(t *testing.T) {
		s := newTestServer(t, Ports{Detector: &mockDetector{err: domain.ErrTextTooShort}})
		w, _ := do(t, s, http.MethodGet, "/api/v1/documents/doc-1/verdict")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("no detector is 503", func(t *testing.T) {
		s := newTestServer(t, Ports{})
		w, _ := do(t, s, http.MethodGet, "/api/v1/documents/doc-1/verdict")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestSubmit(t *testing.T) {
	t.Run("async is 202", func(t *testing.T) {
		s := newTestServer(t, Ports{Processing: &mockProcessing{mode: domain.SubmitAsync}})
		w, body := do(t, s, http.MethodPost, "/api/v1/documents/doc-1/submit")
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "async", body["data"].(map[string]any)["mode"])
	})

	t.Run("sync is 200", func(t *testing.T) {
		s := newTestServer(t, Ports{Processing: &mockProcessing{mode: domain.SubmitSync}})
		w, _ := do(t, s, http.MethodPost, "/api/v1/documents/doc-1/submit")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		s := newTestServer(t, Ports{Processing: &mockProcessing{err: fmt.Errorf("get: %w", domain.ErrNotFound)}})
		w, _ := do(t, s, http.MethodPost, "/api/v1/documents/doc-1/submit")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReprocess(t *testing.T) {
	proc := &mockProcessing{mode: domain.SubmitAsync}
	s := newTestServer(t, Ports{Processing: proc})
	w, _ := do(t, s, http.MethodPost, "/api/v1/documents/doc-9/reprocess")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"doc-9"}, proc.reprocessed)
}

func TestReport(t *testing.T) {
	rep := &mockReports{report: &domain.CorpusReport{
		TotalDocuments: 2,
		Successful:     2,
		RiskLevels:     map[string]int{"low": 2},
	}}
	s := newTestServer(t, Ports{Reports: rep})
	w, body := do(t, s, http.MethodGet, "/api/v1/report")
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.InDelta(t, 2, data["total_documents"], 1e-9)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrNoText, http.StatusUnprocessableEntity},
		{domain.ErrInvalidInput, http.StatusUnprocessableEntity},
		{domain.ErrNotImplemented, http.StatusServiceUnavailable},
		{domain.ErrDetection, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
