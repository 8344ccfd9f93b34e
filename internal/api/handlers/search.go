package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sitelens/sitelens/internal/api"
	"github.com/sitelens/sitelens/internal/domain"
)

type SearchService interface {
	Search(ctx context.Context, query string) ([]domain.QueryResult, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query string `json:"query"`
}

type SearchResultResponse struct {
	ChunkID       string              `json:"chunk_id"`
	DocumentID    string              `json:"document_id"`
	Text          string              `json:"text"`
	Position      int                 `json:"position"`
	SiteContext   *domain.SiteContext `json:"site_context,omitempty"`
	SemanticScore float64             `json:"semantic_score"`
	KeywordScore  float64             `json:"keyword_score"`
	FusedScore    float64             `json:"fused_score"`
	RerankBoosts  map[string]float64  `json:"rerank_boosts,omitempty"`
	FinalScore    float64             `json:"final_score"`
}

type SearchResponse struct {
	Results    []*SearchResultResponse `json:"results"`
	DurationMs int                     `json:"duration_ms"`
}

func resultToResponse(r domain.QueryResult) *SearchResultResponse {
	return &SearchResultResponse{
		ChunkID:       r.ChunkID,
		DocumentID:    r.DocumentID,
		Text:          r.Text,
		Position:      r.Position,
		SiteContext:   r.SiteContext,
		SemanticScore: r.SemanticScore,
		KeywordScore:  r.KeywordScore,
		FusedScore:    r.FusedScore,
		RerankBoosts:  r.RerankBoosts,
		FinalScore:    r.FinalScore,
	}
}

// Search handles both GET /search?q=... and POST /search {"query": ...}.
// An empty result set is a 200 with an empty list; collaborator failures
// surface as 502 so callers can tell the two apart.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	query := r.URL.Query().Get("q")
	if query == "" && r.Method == http.MethodPost {
		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
		query = req.Query
	}

	if query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := h.svc.Search(r.Context(), query)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*SearchResultResponse, len(results))
	for i, result := range results {
		responses[i] = resultToResponse(result)
	}

	api.Success(w, http.StatusOK, SearchResponse{
		Results:    responses,
		DurationMs: int(time.Since(start).Milliseconds()),
	})
}
