package services

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/similarity"
	"github.com/custodia-labs/plagscan/internal/logger"
)

// FindCandidates selects the corpus documents worth comparing in detail.
// An exact file name duplicate short-circuits everything else. Otherwise
// the vector path runs when the document has an embedding, and the text
// path runs when there is no embedding or the vector path admits nothing.
func (s *DetectorService) FindCandidates(ctx context.Context, doc *domain.Document) (*domain.CandidateSet, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	members, err := s.corpus(ctx, doc)
	if err != nil {
		return nil, err
	}

	if dups := filenameDuplicates(doc, members); len(dups) > 0 {
		return &domain.CandidateSet{ShortCircuit: dups}, nil
	}

	text, err := s.loadText(ctx, doc)
	if err != nil && !domain.IsInputError(err) {
		logger.Warn("retrieval: text for %s unavailable: %v", doc.ID, err)
	}
	return &domain.CandidateSet{Candidates: s.rank(ctx, doc, text, members)}, nil
}

func (s *DetectorService) corpus(ctx context.Context, doc *domain.Document) ([]domain.Document, error) {
	members, err := s.docStore.ListCorpusMembers(ctx, doc.ID, 0)
	if err != nil {
		return nil, wrapDetection("listing corpus", err)
	}
	return members, nil
}

// filenameDuplicates compares base file names, case-sensitively.
func filenameDuplicates(doc *domain.Document, members []domain.Document) []domain.SourceMatch {
	name := doc.FileName()
	if name == "" {
		return nil
	}

	var dups []domain.SourceMatch
	for i := range members {
		if members[i].FileName() != name {
			continue
		}
		dups = append(dups, domain.SourceMatch{
			DocumentID:   members[i].ID,
			Name:         members[i].Name,
			MatchPercent: 100,
			Similarity:   1,
			Method:       domain.MethodFilename,
		})
	}
	return dups
}

// rank runs the vector path and, if it yields nothing, the text path.
func (s *DetectorService) rank(
	ctx context.Context, doc *domain.Document, text string, members []domain.Document,
) []domain.Candidate {
	if doc.HasEmbedding() {
		if candidates := s.vectorCandidates(ctx, doc, members); len(candidates) > 0 {
			return candidates
		}
		logger.Debug("retrieval: vector path admitted nothing for %s", doc.ID)
	}
	if text == "" {
		return nil
	}
	return s.textCandidates(ctx, doc, text, members)
}

// vectorCandidates scores every corpus member that has an embedding by
// cosine similarity, consulting the cache for vectors and pair scores.
func (s *DetectorService) vectorCandidates(
	ctx context.Context, doc *domain.Document, members []domain.Document,
) []domain.Candidate {
	docVec := s.vectorFor(ctx, doc)

	scored := make([]*domain.Candidate, len(members))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	for i := range members {
		member := &members[i]
		if !member.HasEmbedding() {
			continue
		}
		g.Go(func() error {
			score, ok := s.pairScore(gctx, doc.ID, docVec, member)
			if ok && score > s.settings.AdmissionThreshold {
				scored[i] = &domain.Candidate{Document: member, Score: score, Method: domain.MethodVector}
			}
			return nil
		})
	}
	_ = g.Wait()

	return collect(scored, 0)
}

// pairScore returns the cached or freshly computed cosine similarity.
// A failed comparison is logged and reported as not ok.
func (s *DetectorService) pairScore(
	ctx context.Context, docID string, docVec []float32, member *domain.Document,
) (float64, bool) {
	if s.cache != nil {
		if score, ok := s.cache.GetSimilarity(ctx, docID, member.ID); ok {
			return score, true
		}
	}

	score, err := similarity.Cosine(docVec, s.vectorFor(ctx, member))
	if err != nil {
		logger.Warn("retrieval: skipping %s: %v", member.ID, err)
		return 0, false
	}

	if s.cache != nil {
		s.cache.PutSimilarity(ctx, docID, member.ID, score, s.cacheSettings.SimilarityTTL)
	}
	return score, true
}

// vectorFor returns the cached vector for doc, caching the stored one on a miss.
func (s *DetectorService) vectorFor(ctx context.Context, doc *domain.Document) []float32 {
	if s.cache == nil {
		return doc.Embedding
	}
	if vec, ok := s.cache.GetVector(ctx, doc.ID); ok {
		return vec
	}
	if doc.HasEmbedding() {
		s.cache.PutVector(ctx, doc.ID, doc.Embedding, s.cacheSettings.VectorTTL)
	}
	return doc.Embedding
}

// textCandidates scans a bounded number of corpus members with text and
// scores each by composite text similarity.
func (s *DetectorService) textCandidates(
	ctx context.Context, doc *domain.Document, text string, members []domain.Document,
) []domain.Candidate {
	pool := make([]*domain.Document, 0, len(members))
	for i := range members {
		if members[i].HasText() {
			pool = append(pool, &members[i])
		}
		if s.settings.FallbackScanLimit > 0 && len(pool) >= s.settings.FallbackScanLimit {
			break
		}
	}

	profile := similarity.NewProfile(text)
	scored := make([]*domain.Candidate, len(pool))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	for i, member := range pool {
		g.Go(func() error {
			memberText, err := s.textStore.Get(gctx, member.TextPath)
			if err != nil {
				logger.Warn("retrieval: skipping %s: %v", member.ID, err)
				return nil
			}
			if runeLen(memberText) < s.settings.MinTextLength {
				return nil
			}
			score, _ := profile.Compare(similarity.NewProfile(memberText))
			if score > s.settings.AdmissionThreshold {
				scored[i] = &domain.Candidate{
					Document: member,
					Score:    score,
					Method:   domain.MethodText,
					Text:     memberText,
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	return collect(scored, s.settings.FallbackTopK)
}

// collect drops empty slots, sorts by score descending and truncates to
// limit when limit is positive.
func collect(scored []*domain.Candidate, limit int) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(scored))
	for _, c := range scored {
		if c != nil {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Document.ID < out[j].Document.ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *DetectorService) concurrency() int {
	if s.settings.Concurrency > 0 {
		return s.settings.Concurrency
	}
	return 1
}
