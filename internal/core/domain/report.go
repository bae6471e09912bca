package domain

import "time"

// DocumentReport is one row of a corpus report.
type DocumentReport struct {
	DocumentID string   `json:"document_id"`
	Name       string   `json:"name"`
	Verdict    *Verdict `json:"verdict,omitempty"`
	Warning    string   `json:"warning,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// CorpusReport aggregates detection results across documents.
type CorpusReport struct {
	GeneratedAt        time.Time        `json:"generated_at"`
	TotalDocuments     int              `json:"total_documents"`
	Successful         int              `json:"successful_analyses"`
	Plagiarized        int              `json:"plagiarized_documents"`
	Warnings           int              `json:"warnings"`
	Errors             int              `json:"errors"`
	AverageOriginality float64          `json:"average_originality"`
	PlagiarismRate     float64          `json:"plagiarism_rate"`
	RiskLevels         map[string]int   `json:"risk_levels"`
	Documents          []DocumentReport `json:"documents"`
}
