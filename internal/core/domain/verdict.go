package domain

import (
	"fmt"
	"strings"
	"time"
)

// RiskLevel is an ordered plagiarism risk classification.
type RiskLevel int

// Risk levels, ordered from least to most severe.
const (
	RiskVeryLow RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskVeryHigh
)

var riskNames = [...]string{"very_low", "low", "medium", "high", "very_high"}

// String returns the string representation.
func (r RiskLevel) String() string {
	if r < RiskVeryLow || r > RiskVeryHigh {
		return "unknown"
	}
	return riskNames[r]
}

// ParseRiskLevel converts a risk name into a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	for i, name := range riskNames {
		if strings.EqualFold(s, name) {
			return RiskLevel(i), nil
		}
	}
	return RiskVeryLow, fmt.Errorf("%w: unknown risk level %q", ErrInvalidInput, s)
}

// MarshalText encodes the level by name.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a level name.
func (r *RiskLevel) UnmarshalText(b []byte) error {
	lvl, err := ParseRiskLevel(string(b))
	if err != nil {
		return err
	}
	*r = lvl
	return nil
}

// ClassifyRisk maps the strongest composite similarity (0-1) to a risk level.
func ClassifyRisk(maxSimilarity float64) RiskLevel {
	switch {
	case maxSimilarity > 0.9:
		return RiskVeryHigh
	case maxSimilarity > 0.8:
		return RiskHigh
	case maxSimilarity > 0.7:
		return RiskMedium
	case maxSimilarity > 0.5:
		return RiskLow
	default:
		return RiskVeryLow
	}
}

// SourceMatch describes overlap between the analysed document and one source.
type SourceMatch struct {
	DocumentID      string  `json:"document_id"`
	Name            string  `json:"name"`
	MatchPercent    float64 `json:"match_percent"`
	CitationPercent float64 `json:"citation_percent"`

	// Similarity is the composite text similarity (0-1) when computed.
	Similarity float64 `json:"similarity,omitempty"`

	// Method records how the source was admitted ("filename", "vector", "text").
	Method string `json:"method,omitempty"`
}

// Analysis carries the supporting numbers behind a verdict.
type Analysis struct {
	MaxSimilarity   float64  `json:"max_similarity"`
	AvgSimilarity   float64  `json:"avg_similarity"`
	SimilarCount    int      `json:"similar_documents_count"`
	TextLength      int      `json:"text_length"`
	Methods         []string `json:"analysis_methods,omitempty"`
	RetrievalMethod string   `json:"retrieval_method,omitempty"`
}

// Verdict is the outcome of analysing one document.
type Verdict struct {
	DocumentID    string        `json:"document_id"`
	Originality   float64       `json:"originality"`
	Similarity    float64       `json:"similarity"`
	Citations     float64       `json:"citations"`
	Risk          RiskLevel     `json:"risk_level"`
	IsPlagiarized bool          `json:"is_plagiarized"`
	Sources       []SourceMatch `json:"sources"`
	Message       string        `json:"message"`
	Analysis      Analysis      `json:"detailed_analysis"`
	AnalyzedAt    time.Time     `json:"analyzed_at"`
}

// Retrieval methods recorded on candidates and source matches.
const (
	MethodFilename = "filename"
	MethodVector   = "vector"
	MethodText     = "text"
)

// Candidate is a corpus document admitted for detailed comparison.
type Candidate struct {
	Document *Document

	// Score is the admission score (cosine or composite text similarity).
	Score float64

	// Method is MethodVector or MethodText.
	Method string

	// Text is the candidate's extracted text when already loaded.
	Text string
}

// CandidateSet is the result of candidate retrieval.
type CandidateSet struct {
	// ShortCircuit is populated when an exact filename duplicate exists.
	// No further analysis is performed in that case.
	ShortCircuit []SourceMatch

	// Candidates are ordered by Score descending.
	Candidates []Candidate
}

// IsShortCircuit reports whether a filename duplicate was found.
func (c *CandidateSet) IsShortCircuit() bool {
	return len(c.ShortCircuit) > 0
}
