package services

import (
	"context"
	"time"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/core/ports/driving"
	"github.com/custodia-labs/plagscan/internal/logger"
)

// Ensure ReportService implements the interface.
var _ driving.ReportService = (*ReportService)(nil)

// ReportService runs detection across every document and summarises it.
type ReportService struct {
	docStore driven.DocumentStore
	detector driving.Detector
	now      func() time.Time
}

// NewReportService creates a report service.
func NewReportService(docStore driven.DocumentStore, detector driving.Detector) *ReportService {
	return &ReportService{docStore: docStore, detector: detector, now: time.Now}
}

// Report analyses every document. Input problems (no text, too short) are
// counted as warnings, anything else as errors.
func (s *ReportService) Report(ctx context.Context) (*domain.CorpusReport, error) {
	if s.docStore == nil || s.detector == nil {
		return nil, domain.ErrNotImplemented
	}

	docs, err := s.docStore.ListDocuments(ctx, domain.DocumentFilter{})
	if err != nil {
		return nil, err
	}

	report := &domain.CorpusReport{
		GeneratedAt:    s.now(),
		TotalDocuments: len(docs),
		RiskLevels:     make(map[string]int),
		Documents:      make([]domain.DocumentReport, 0, len(docs)),
	}

	var originalitySum float64
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc := &docs[i]
		row := domain.DocumentReport{DocumentID: doc.ID, Name: doc.Name}

		verdict, err := s.detector.DetectPlagiarism(ctx, doc.ID)
		switch {
		case err == nil:
			row.Verdict = verdict
			report.Successful++
			originalitySum += verdict.Originality
			report.RiskLevels[verdict.Risk.String()]++
			if verdict.IsPlagiarized {
				report.Plagiarized++
			}
		case domain.IsInputError(err):
			row.Warning = err.Error()
			report.Warnings++
		default:
			logger.Warn("report: analysing %s: %v", doc.ID, err)
			row.Error = err.Error()
			report.Errors++
		}
		report.Documents = append(report.Documents, row)
	}

	if report.Successful > 0 {
		n := float64(report.Successful)
		report.AverageOriginality = round2(originalitySum / n)
		report.PlagiarismRate = round2(float64(report.Plagiarized) / n * 100)
	}
	return report, nil
}
