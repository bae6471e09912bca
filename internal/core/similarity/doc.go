// Package similarity provides the pure text and vector comparison
// functions used by candidate retrieval and detection.
//
// Text comparison works on hashed word shingles: overlapping windows of
// N lowercased tokens, each hashed to a uint64 with xxhash. Vector
// comparison is cosine similarity over float32 embeddings.
//
// Nothing in this package performs I/O or holds state. Identical inputs
// always produce identical outputs.
package similarity
