package driving

import (
	"context"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

// ImportService registers the files of a directory as documents.
type ImportService interface {
	// Import registers every supported file under dir that is not yet known.
	Import(ctx context.Context, dir string, opts domain.ImportOptions) (*domain.ImportResult, error)

	// Watch imports files as they appear under dir until ctx is cancelled,
	// calling onFile for each outcome.
	Watch(ctx context.Context, dir string, opts domain.ImportOptions, onFile func(domain.ImportedFile)) error
}
