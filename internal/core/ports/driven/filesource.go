package driven

import "context"

// FileSource enumerates and watches document files under a root directory.
type FileSource interface {
	// Root returns the absolute directory being read.
	Root() string

	// Scan walks the root and emits the path of every supported file.
	// Both channels are closed when the walk ends; at most one error is sent.
	Scan(ctx context.Context) (<-chan string, <-chan error)

	// Watch emits paths of supported files as they are created or written.
	// The channel is closed when ctx is cancelled or the source is closed.
	Watch(ctx context.Context) (<-chan string, error)

	// Close stops any active watch.
	Close() error
}
