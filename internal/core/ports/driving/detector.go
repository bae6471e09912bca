package driving

import (
	"context"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

// Detector analyses a document against the reference corpus.
type Detector interface {
	// DetectPlagiarism returns the verdict for a document.
	// It does not persist anything. Errors: domain.ErrNotFound,
	// domain.ErrNoText, domain.ErrTextTooShort, domain.ErrDetection.
	DetectPlagiarism(ctx context.Context, documentID string) (*domain.Verdict, error)

	// FindCandidates selects comparison sources for a document.
	FindCandidates(ctx context.Context, doc *domain.Document) (*domain.CandidateSet, error)
}
