package driven

import "context"

// TextExtractor turns one family of file formats into plain UTF-8 text.
type TextExtractor interface {
	// SupportedExtensions returns the lowercase extensions handled, with dot.
	SupportedExtensions() []string

	// Extract reads the file at path and returns its text.
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractorRegistry dispatches extraction by file extension.
type ExtractorRegistry interface {
	// Extract picks the extractor registered for path's extension.
	// Returns an error wrapping domain.ErrUnsupportedType when none matches.
	Extract(ctx context.Context, path string) (string, error)

	// Register adds an extractor. Later registrations win on conflict.
	Register(extractor TextExtractor)

	// SupportedExtensions returns every extension that can be extracted.
	SupportedExtensions() []string
}
