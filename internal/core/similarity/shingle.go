package similarity

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// originalityOffset keeps a perfect match from reporting exactly zero
// due to floating point noise.
const originalityOffset = 0.01

// Set is a set of hashed shingles.
type Set map[uint64]struct{}

// Len returns the number of shingles.
func (s Set) Len() int {
	return len(s)
}

// Contains reports whether h is in the set.
func (s Set) Contains(h uint64) bool {
	_, ok := s[h]
	return ok
}

// Union adds every element of other to s.
func (s Set) Union(other Set) {
	for h := range other {
		s[h] = struct{}{}
	}
}

// Normalize lowercases text and collapses runs of whitespace to single spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Tokens returns the normalised word tokens of text.
func Tokens(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Shingles returns the hashed set of overlapping size-token windows of text.
// Text with fewer than size tokens yields an empty set.
func Shingles(text string, size int) Set {
	return shinglesOf(Tokens(text), size)
}

func shinglesOf(tokens []string, size int) Set {
	set := make(Set)
	if size <= 0 || len(tokens) < size {
		return set
	}
	for i := 0; i+size <= len(tokens); i++ {
		set[xxhash.Sum64String(strings.Join(tokens[i:i+size], " "))] = struct{}{}
	}
	return set
}

// Words returns the set of distinct words in text.
func Words(text string) Set {
	return shinglesOf(Tokens(text), 1)
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when the union is empty.
func Jaccard(a, b Set) float64 {
	union := len(a) + len(b)
	if union == 0 {
		return 0
	}
	inter := intersection(a, b)
	return float64(inter) / float64(union-inter)
}

// Containment returns |a∩b| / |a|, or 0 when a is empty.
// Unlike Jaccard it is directional.
func Containment(a, b Set) float64 {
	if len(a) == 0 {
		return 0
	}
	return float64(intersection(a, b)) / float64(len(a))
}

func intersection(a, b Set) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for h := range a {
		if _, ok := b[h]; ok {
			n++
		}
	}
	return n
}

// Originality scores text against the union of all corpus shingles:
// 100 - 100*jaccard - 0.01. Callers clamp the result to [0,100].
func Originality(text string, corpus []string, size int) float64 {
	union := make(Set)
	for _, c := range corpus {
		union.Union(Shingles(c, size))
	}
	return OriginalityOf(Shingles(text, size), union)
}

// OriginalityOf is Originality over precomputed sets.
func OriginalityOf(text, corpus Set) float64 {
	return 100 - 100*Jaccard(text, corpus) - originalityOffset
}

// MatchPercent returns the Jaccard similarity of the two texts as a percentage.
func MatchPercent(text, source string, size int) float64 {
	return 100 * Jaccard(Shingles(text, size), Shingles(source, size))
}

// CitationPercent returns the share of text's shingles that also occur in
// source, as a percentage. It is not symmetric in its arguments.
func CitationPercent(text, source string, size int) float64 {
	return 100 * Containment(Shingles(text, size), Shingles(source, size))
}

// Clamp bounds v to [0,100].
func Clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
