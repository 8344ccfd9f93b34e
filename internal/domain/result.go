package domain

// Boost names used in QueryResult.RerankBoosts.
const (
	BoostPosition    = "position"
	BoostSiteContext = "site_context"
	BoostSiteQuery   = "site_query"
)

// QueryResult is the per-query scoring record for one candidate chunk. It is
// created during retrieval and discarded after the response.
type QueryResult struct {
	ChunkID       string
	DocumentID    string
	Text          string
	Position      int
	SiteContext   *SiteContext
	SemanticScore float64
	KeywordScore  float64
	FusedScore    float64
	RerankBoosts  map[string]float64
	FinalScore    float64
}

// TotalBoost sums the rerank boosts applied to this result.
func (r *QueryResult) TotalBoost() float64 {
	var total float64
	for _, v := range r.RerankBoosts {
		total += v
	}
	return total
}
