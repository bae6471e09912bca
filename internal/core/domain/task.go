package domain

import "time"

// Task is one queued pipeline run scoped to a single document.
type Task struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// SubmitMode records how a submission was executed.
type SubmitMode string

// Submission modes.
const (
	SubmitAsync SubmitMode = "async"
	SubmitSync  SubmitMode = "sync"
)

// SubmitResult is returned to callers of submitForProcessing.
type SubmitResult struct {
	DocumentID string     `json:"document_id"`
	Mode       SubmitMode `json:"mode"`
	TaskID     string     `json:"task_id,omitempty"`

	// Status is the document status observed after submission.
	Status ProcessingStatus `json:"status"`

	// Err holds the pipeline error of a synchronous run.
	Err string `json:"error,omitempty"`
}
