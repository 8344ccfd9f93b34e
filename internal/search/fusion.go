package search

import (
	"sort"

	"github.com/sitelens/sitelens/internal/domain"
)

// Weights controls how the semantic and keyword signals are combined. They are
// expected, not required, to sum to 1.
type Weights struct {
	Semantic float64
	Keyword  float64
}

// Fuse combines each result's semantic and keyword scores into a fused score
// and returns the results ordered by it, best first. Both score types are
// min-max normalized across the candidate set before weighting so neither
// signal can dominate purely by scale. Ties are broken by the chunk's position
// in its source document, then by chunk ID.
func Fuse(results []domain.QueryResult, w Weights) []domain.QueryResult {
	if len(results) == 0 {
		return results
	}

	semantic := make([]float64, len(results))
	keyword := make([]float64, len(results))
	for i, r := range results {
		semantic[i] = r.SemanticScore
		keyword[i] = r.KeywordScore
	}
	normalize(semantic)
	normalize(keyword)

	fused := make([]domain.QueryResult, len(results))
	copy(fused, results)
	for i := range fused {
		fused[i].FusedScore = w.Semantic*semantic[i] + w.Keyword*keyword[i]
		fused[i].FinalScore = fused[i].FusedScore
	}

	sortByScore(fused, func(r *domain.QueryResult) float64 { return r.FusedScore })
	return fused
}

// normalize rescales scores to [0,1] in place. A constant set maps to all
// zeros so equal inputs stay tied instead of all becoming maximal.
func normalize(scores []float64) {
	lo, hi := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	span := hi - lo
	if span == 0 {
		for i := range scores {
			scores[i] = 0
		}
		return
	}
	for i := range scores {
		scores[i] = (scores[i] - lo) / span
	}
}

func sortByScore(results []domain.QueryResult, score func(*domain.QueryResult) float64) {
	sort.SliceStable(results, func(i, j int) bool {
		si, sj := score(&results[i]), score(&results[j])
		if si != sj {
			return si > sj
		}
		if results[i].Position != results[j].Position {
			return results[i].Position < results[j].Position
		}
		return results[i].ChunkID < results[j].ChunkID
	})
}
