// Package driven holds the outbound ports: everything the core services
// need from storage, model servers, queues and the filesystem.
//
// A working install needs DocumentStore, TextStore, ExtractorRegistry and
// ConfigStore. The rest may be nil and the services fall back as follows:
//
//   - Vectorizer / EmbeddingService: no document vectors; retrieval scans text.
//   - SimilarityCache: vectors and pair scores are recomputed on every lookup.
//   - TaskQueue: submissions are processed inline.
//   - SchedulerStore: maintenance timing restarts from zero on each launch.
//   - FileSource: folder import is unavailable.
//
// This package imports only domain.
package driven
