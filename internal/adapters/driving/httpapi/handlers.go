package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

type handler struct {
	ports Ports
}

// DocumentResp is the JSON shape of a document.
type DocumentResp struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	FileName    string          `json:"file_name"`
	Status      string          `json:"status"`
	InCorpus    bool            `json:"in_corpus"`
	Originality *float64        `json:"originality"`
	Verdict     *domain.Verdict `json:"verdict,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toDocumentResp(doc *domain.Document) DocumentResp {
	return DocumentResp{
		ID:          doc.ID,
		Name:        doc.Name,
		FileName:    doc.FileName(),
		Status:      doc.Status.String(),
		InCorpus:    doc.InCorpus,
		Originality: doc.Originality,
		Verdict:     doc.Verdict,
		LastError:   doc.LastError,
		StartedAt:   doc.StartedAt,
		CompletedAt: doc.CompletedAt,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

// Health reports liveness.
// GET /healthz
func (h *handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListDocuments lists documents.
// GET /api/v1/documents?status=failed&corpus=true&limit=20
func (h *handler) ListDocuments(c *gin.Context) {
	filter := domain.DocumentFilter{
		Status:     domain.ProcessingStatus(c.Query("status")),
		CorpusOnly: c.Query("corpus") == "true",
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		filter.Limit = n
	}

	docs, err := h.ports.Documents.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	list := make([]DocumentResp, len(docs))
	for i := range docs {
		list[i] = toDocumentResp(&docs[i])
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// GetDocument returns one document with its stored verdict.
// GET /api/v1/documents/:id
func (h *handler) GetDocument(c *gin.Context) {
	doc, err := h.ports.Documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toDocumentResp(doc)})
}

// Verdict runs a fresh analysis without persisting it.
// GET /api/v1/documents/:id/verdict
func (h *handler) Verdict(c *gin.Context) {
	if h.ports.Detector == nil {
		writeError(c, domain.ErrNotImplemented)
		return
	}
	v, err := h.ports.Detector.DetectPlagiarism(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": v})
}

// Submit hands a document to the processing pipeline.
// POST /api/v1/documents/:id/submit
func (h *handler) Submit(c *gin.Context) {
	if h.ports.Processing == nil {
		writeError(c, domain.ErrNotImplemented)
		return
	}
	res, err := h.ports.Processing.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(submitStatus(res), gin.H{"data": res})
}

// Reprocess clears the last run and submits again.
// POST /api/v1/documents/:id/reprocess
func (h *handler) Reprocess(c *gin.Context) {
	if h.ports.Processing == nil {
		writeError(c, domain.ErrNotImplemented)
		return
	}
	res, err := h.ports.Processing.Reprocess(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(submitStatus(res), gin.H{"data": res})
}

// Report analyses every document.
// GET /api/v1/report
func (h *handler) Report(c *gin.Context) {
	if h.ports.Reports == nil {
		writeError(c, domain.ErrNotImplemented)
		return
	}
	report, err := h.ports.Reports.Report(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

// submitStatus is 202 for queued work and 200 when the pipeline ran inline.
func submitStatus(res *domain.SubmitResult) int {
	if res.Mode == domain.SubmitAsync {
		return http.StatusAccepted
	}
	return http.StatusOK
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsInputError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotImplemented):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
