package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/core/ports/driving"
	"github.com/custodia-labs/plagscan/internal/core/similarity"
	"github.com/custodia-labs/plagscan/internal/logger"
)

// Ensure DetectorService implements the interface.
var _ driving.Detector = (*DetectorService)(nil)

// DetectorService analyses documents against the corpus.
type DetectorService struct {
	docStore      driven.DocumentStore
	textStore     driven.TextStore
	cache         driven.SimilarityCache
	settings      domain.DetectionSettings
	cacheSettings domain.CacheSettings
	now           func() time.Time
}

// NewDetectorService creates a detector. The cache is optional (can be nil).
func NewDetectorService(
	docStore driven.DocumentStore,
	textStore driven.TextStore,
	cache driven.SimilarityCache,
	settings domain.DetectionSettings,
	cacheSettings domain.CacheSettings,
) *DetectorService {
	return &DetectorService{
		docStore:      docStore,
		textStore:     textStore,
		cache:         cache,
		settings:      settings,
		cacheSettings: cacheSettings,
		now:           time.Now,
	}
}

// DetectPlagiarism analyses one document and returns its verdict without
// persisting it.
func (s *DetectorService) DetectPlagiarism(ctx context.Context, documentID string) (*domain.Verdict, error) {
	if s.docStore == nil || s.textStore == nil {
		return nil, domain.ErrNotImplemented
	}
	logger.Section("Detection")

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	members, err := s.corpus(ctx, doc)
	if err != nil {
		return nil, err
	}
	if dups := filenameDuplicates(doc, members); len(dups) > 0 {
		logger.Debug("detect: %s shares its file name with %d corpus document(s)", doc.ID, len(dups))
		return s.duplicateVerdict(doc, dups), nil
	}

	text, err := s.loadText(ctx, doc)
	if err != nil {
		return nil, err
	}
	if n := runeLen(text); n < s.settings.MinTextLength {
		return nil, fmt.Errorf("%w: %d characters, need %d", domain.ErrTextTooShort, n, s.settings.MinTextLength)
	}

	candidates := s.rank(ctx, doc, text, members)
	logger.Debug("detect: %s has %d candidate(s)", doc.ID, len(candidates))
	return s.verdict(ctx, doc, text, candidates), nil
}

// loadText reads the extracted text of doc.
func (s *DetectorService) loadText(ctx context.Context, doc *domain.Document) (string, error) {
	if !doc.HasText() {
		return "", domain.ErrNoText
	}
	text, err := s.textStore.Get(ctx, doc.TextPath)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", domain.ErrNoText, doc.TextPath)
		}
		return "", wrapDetection("reading text", err)
	}
	return text, nil
}

func (s *DetectorService) duplicateVerdict(doc *domain.Document, dups []domain.SourceMatch) *domain.Verdict {
	return &domain.Verdict{
		DocumentID:    doc.ID,
		Originality:   0,
		Similarity:    100,
		Risk:          domain.RiskVeryHigh,
		IsPlagiarized: true,
		Sources:       dups,
		Message: fmt.Sprintf("file name %q matches %d corpus document(s); originality 0%%",
			doc.FileName(), len(dups)),
		Analysis: domain.Analysis{
			MaxSimilarity:   1,
			AvgSimilarity:   1,
			SimilarCount:    len(dups),
			RetrievalMethod: domain.MethodFilename,
		},
		AnalyzedAt: s.now(),
	}
}

// verdict compares text against each candidate. Originality is the worst
// single-source score and citations the best single-source citation share,
// capped by the overall similarity.
func (s *DetectorService) verdict(
	ctx context.Context, doc *domain.Document, text string, candidates []domain.Candidate,
) *domain.Verdict {
	v := &domain.Verdict{
		DocumentID:  doc.ID,
		Originality: 100,
		Risk:        domain.RiskVeryLow,
		Sources:     []domain.SourceMatch{},
		Analysis: domain.Analysis{
			SimilarCount: len(candidates),
			TextLength:   runeLen(text),
		},
		AnalyzedAt: s.now(),
	}

	if len(candidates) == 0 {
		v.Message = "original: no similar documents found"
		return v
	}
	v.Analysis.RetrievalMethod = candidates[0].Method

	profile := similarity.NewProfile(text)
	docShingles := similarity.Shingles(text, s.settings.ShingleSize)

	minOriginality := math.Inf(1)
	var maxCitation, maxComposite, sumComposite float64
	for _, c := range candidates {
		sourceText := c.Text
		if sourceText == "" {
			var err error
			sourceText, err = s.textStore.Get(ctx, c.Document.TextPath)
			if err != nil {
				logger.Warn("detect: skipping source %s: %v", c.Document.ID, err)
				continue
			}
		}

		composite, _ := profile.Compare(similarity.NewProfile(sourceText))
		sourceShingles := similarity.Shingles(sourceText, s.settings.ShingleSize)

		originality := similarity.OriginalityOf(docShingles, sourceShingles)
		match := 100 * similarity.Jaccard(docShingles, sourceShingles)
		citation := similarity.CitationPercent(text, sourceText, s.settings.CitationShingleSize)

		minOriginality = math.Min(minOriginality, originality)
		maxCitation = math.Max(maxCitation, round2(similarity.Clamp(citation)))
		maxComposite = math.Max(maxComposite, composite)
		sumComposite += composite

		v.Sources = append(v.Sources, domain.SourceMatch{
			DocumentID:      c.Document.ID,
			Name:            c.Document.Name,
			MatchPercent:    round2(similarity.Clamp(match)),
			CitationPercent: round2(similarity.Clamp(citation)),
			Similarity:      composite,
			Method:          c.Method,
		})
	}

	if len(v.Sources) == 0 {
		v.Message = "original: similar documents could not be read"
		return v
	}

	sort.SliceStable(v.Sources, func(i, j int) bool {
		return v.Sources[i].Similarity > v.Sources[j].Similarity
	})

	v.Originality = similarity.Clamp(minOriginality)
	v.Similarity = 100 - v.Originality
	v.Citations = math.Min(maxCitation, v.Similarity)
	v.Risk = domain.ClassifyRisk(maxComposite)
	v.IsPlagiarized = v.Originality < s.settings.OriginalityThreshold || maxComposite > s.settings.HighSimilarity
	v.Analysis.MaxSimilarity = maxComposite
	v.Analysis.AvgSimilarity = sumComposite / float64(len(v.Sources))
	v.Analysis.Methods = similarity.Methods()

	if v.IsPlagiarized {
		v.Message = fmt.Sprintf("possible plagiarism: originality %.2f%%, max similarity %.2f", v.Originality, maxComposite)
	} else {
		v.Message = fmt.Sprintf("original: originality %.2f%%, max similarity %.2f", v.Originality, maxComposite)
	}
	return v
}

func wrapDetection(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrDetection, op, err)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
