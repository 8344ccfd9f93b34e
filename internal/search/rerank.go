package search

import (
	"strings"

	"github.com/sitelens/sitelens/internal/domain"
)

// RerankParams are the boost toggles applied on top of fused scores.
type RerankParams struct {
	Enabled          bool
	PositionWindow   int
	PositionScale    float64
	SiteContextBoost float64
	SiteQueryBoost   float64
}

// DefaultRerankParams returns the boost configuration used when none is given.
func DefaultRerankParams() RerankParams {
	return RerankParams{
		Enabled:          true,
		PositionWindow:   100,
		PositionScale:    0.1,
		SiteContextBoost: 0.15,
		SiteQueryBoost:   0.25,
	}
}

// Rerank adjusts fused results with additive boosts and re-sorts by the final
// score. With reranking disabled the input is returned unchanged, in the same
// order. Boosts applied to a result are recorded in its RerankBoosts map.
//
// Three boosts are available, each independently effective:
// a position boost for query terms appearing early in the chunk text, scaled
// down linearly to zero at the window edge; a flat boost for chunks carrying
// site context; and a flat boost, stacking with the previous one, when the
// query itself mentions "site".
func Rerank(query string, results []domain.QueryResult, p RerankParams) []domain.QueryResult {
	if !p.Enabled || len(results) == 0 {
		return results
	}

	terms := QueryTerms(query)
	siteQuery := queryMentionsSite(query)

	reranked := make([]domain.QueryResult, len(results))
	copy(reranked, results)

	for i := range reranked {
		r := &reranked[i]
		boosts := map[string]float64{}

		if pb := positionBoost(r.Text, terms, p.PositionWindow, p.PositionScale); pb > 0 {
			boosts[domain.BoostPosition] = pb
		}
		if r.SiteContext.HasNavLinks() {
			boosts[domain.BoostSiteContext] = p.SiteContextBoost
		}
		if siteQuery {
			boosts[domain.BoostSiteQuery] = p.SiteQueryBoost
		}

		r.RerankBoosts = boosts
		r.FinalScore = r.FusedScore + r.TotalBoost()
	}

	sortByScore(reranked, func(r *domain.QueryResult) float64 { return r.FinalScore })
	return reranked
}

// positionBoost rewards query terms that occur within the first window runes
// of the text. Each matched term contributes scale*(1-pos/window), so a match
// at offset zero earns the full scale and one at the window edge earns
// nothing.
func positionBoost(text string, terms []string, window int, scale float64) float64 {
	if window <= 0 || scale <= 0 || len(terms) == 0 {
		return 0
	}

	textLower := strings.ToLower(text)
	boost := 0.0
	for _, term := range terms {
		idx := strings.Index(textLower, term)
		if idx < 0 {
			continue
		}
		pos := len([]rune(textLower[:idx]))
		if pos >= window {
			continue
		}
		boost += scale * (1 - float64(pos)/float64(window))
	}
	return boost
}

func queryMentionsSite(query string) bool {
	for _, f := range strings.Fields(strings.ToLower(query)) {
		if strings.Trim(f, `.,;:!?"'()[]`) == "site" {
			return true
		}
	}
	return false
}
