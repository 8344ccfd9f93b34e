package service

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sitelens/sitelens/internal/config"
	"github.com/sitelens/sitelens/internal/domain"
	"github.com/sitelens/sitelens/internal/index"
	"github.com/sitelens/sitelens/internal/search"
	"github.com/sitelens/sitelens/internal/telemetry"
)

const (
	defaultCandidateMultiplier = 4
	defaultMinCandidates       = 20
	defaultMaxCandidates       = 200
)

// RetrievalService runs the query path: embed the query, fetch nearest
// candidates from the index, score them lexically, fuse both signals and
// rerank. An empty result set is a valid answer; collaborator failures abort
// only the affected query.
type RetrievalService struct {
	embedder Embedder
	index    index.Index
	weights  search.Weights
	rerank   search.RerankParams
	topK     int
	logger   zerolog.Logger
}

func NewRetrievalService(embedder Embedder, idx index.Index, cfg *config.RetrievalConfig, logger zerolog.Logger) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		index:    idx,
		weights: search.Weights{
			Semantic: cfg.Hybrid.SemanticWeight,
			Keyword:  cfg.Hybrid.KeywordWeight,
		},
		rerank: search.RerankParams{
			Enabled:          cfg.Rerank.Enabled,
			PositionWindow:   cfg.Rerank.PositionBoostWindow,
			PositionScale:    cfg.Rerank.PositionBoostScale,
			SiteContextBoost: cfg.Rerank.SiteContextBoost,
			SiteQueryBoost:   cfg.Rerank.SiteQueryBoost,
		},
		topK:   cfg.Hybrid.TopK,
		logger: logger,
	}
}

// Search returns the topK best chunks for the query, ranked by the hybrid
// score plus rerank boosts.
func (s *RetrievalService) Search(ctx context.Context, query string) ([]domain.QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.QueryResult{}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "retrieval.search", telemetry.SpanAttributes{
		Query:     query,
		Operation: "search",
	})
	defer span.End()

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	candidateLimit := s.topK * defaultCandidateMultiplier
	if candidateLimit < defaultMinCandidates {
		candidateLimit = defaultMinCandidates
	}
	if candidateLimit > defaultMaxCandidates {
		candidateLimit = defaultMaxCandidates
	}

	candidates, err := s.index.Search(ctx, vector, candidateLimit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if len(candidates) == 0 {
		return []domain.QueryResult{}, nil
	}

	results := scoreCandidates(query, candidates)
	results = search.Fuse(results, s.weights)
	results = search.Rerank(query, results, s.rerank)

	if len(results) > s.topK {
		results = results[:s.topK]
	}

	s.logger.Debug().
		Str("query", query).
		Int("candidates", len(candidates)).
		Int("results", len(results)).
		Msg("retrieval complete")

	return results, nil
}

// scoreCandidates builds the per-query scoring records. The keyword pass over
// the candidate set is read-only and runs in parallel; all scores are joined
// before fusion.
func scoreCandidates(query string, candidates []index.Candidate) []domain.QueryResult {
	results := make([]domain.QueryResult, len(candidates))

	var wg sync.WaitGroup
	for i, cand := range candidates {
		wg.Add(1)
		go func(i int, cand index.Candidate) {
			defer wg.Done()
			results[i] = domain.QueryResult{
				ChunkID:       cand.Chunk.ID,
				DocumentID:    cand.Chunk.DocumentID,
				Text:          cand.Chunk.Text,
				Position:      cand.Chunk.Position,
				SiteContext:   cand.Chunk.SiteContext,
				SemanticScore: cand.Score,
				KeywordScore:  search.KeywordScore(query, cand.Chunk.Text),
			}
		}(i, cand)
	}
	wg.Wait()

	return results
}
