package domain

import (
	"path/filepath"
	"time"
)

// ProcessingStatus is the pipeline state of a document.
type ProcessingStatus string

// Pipeline states.
const (
	StatusQueued     ProcessingStatus = "queued"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s ProcessingStatus) IsValid() bool {
	switch s {
	case StatusQueued, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further pipeline transitions are expected.
func (s ProcessingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// String returns the string representation.
func (s ProcessingStatus) String() string {
	return string(s)
}

// Document is a submitted file together with everything the engine
// records about it.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the display name given at upload time.
	Name string

	// FilePath is the location of the uploaded source file.
	FilePath string

	// TextPath is the handle of the extracted plain text, empty until
	// extraction has succeeded.
	TextPath string

	// Embedding is the document vector. Nil when vectorization has not
	// run or failed.
	Embedding []float32

	// InCorpus marks the document as a comparison source and as eligible
	// for checking against other corpus members.
	InCorpus bool

	// Status is the current pipeline state.
	Status ProcessingStatus

	// Originality is the score in [0,100]. Once set it is never recomputed.
	Originality *float64

	// Verdict is the structured result of the last successful analysis.
	Verdict *Verdict

	// LastError holds the error of the last failed run.
	LastError string

	// StartedAt is when the current or last pipeline run began.
	StartedAt *time.Time

	// CompletedAt is when the last pipeline run finished.
	CompletedAt *time.Time

	// CreatedAt is when the document was registered.
	CreatedAt time.Time

	// UpdatedAt is when the document was last written.
	UpdatedAt time.Time
}

// FileName returns the base name of the uploaded file.
func (d *Document) FileName() string {
	if d.FilePath == "" {
		return ""
	}
	return filepath.Base(d.FilePath)
}

// HasScore reports whether an originality score has been recorded.
func (d *Document) HasScore() bool {
	return d.Originality != nil
}

// HasEmbedding reports whether the document carries a vector.
func (d *Document) HasEmbedding() bool {
	return len(d.Embedding) > 0
}

// HasText reports whether extracted text is available.
func (d *Document) HasText() bool {
	return d.TextPath != ""
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	if d.Embedding != nil {
		c.Embedding = append([]float32(nil), d.Embedding...)
	}
	if d.Originality != nil {
		v := *d.Originality
		c.Originality = &v
	}
	if d.Verdict != nil {
		v := *d.Verdict
		v.Sources = append([]SourceMatch(nil), d.Verdict.Sources...)
		c.Verdict = &v
	}
	if d.StartedAt != nil {
		t := *d.StartedAt
		c.StartedAt = &t
	}
	if d.CompletedAt != nil {
		t := *d.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	// Status restricts results to one pipeline state when set.
	Status ProcessingStatus

	// CorpusOnly restricts results to corpus members.
	CorpusOnly bool

	// UpdatedBefore restricts results to documents not written since.
	UpdatedBefore time.Time

	// Limit caps the number of results. Zero means no limit.
	Limit int
}
