// Package domain defines the core business entities for plagscan.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: a submitted or reference document and its processing state
//   - Verdict: the outcome of one plagiarism analysis
//   - CandidateSet: the comparison sources selected for a document
//   - Task: one unit of queued pipeline work
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
