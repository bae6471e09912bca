package driven

import "context"

// TextStore holds the plain text extracted from documents.
// Handles returned by Put are recorded on the document as TextPath.
type TextStore interface {
	// Put stores text for a document and returns its handle.
	Put(ctx context.Context, documentID, text string) (string, error)

	// Get returns the text behind a handle.
	// Returns domain.ErrNotFound if the handle is unknown.
	Get(ctx context.Context, handle string) (string, error)
}
