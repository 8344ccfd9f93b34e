package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sitelens/sitelens/internal/domain"
)

// Qdrant is a minimal REST-backed Index. It assumes cosine distance and can
// create its collection on startup.
type Qdrant struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewQdrant(cfg QdrantConfig) *Qdrant {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Qdrant{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection if it does not exist. Qdrant answers
// 200 for an existing collection with the same schema.
func (q *Qdrant) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return domain.NewConfigurationError("qdrant collection dimension must be positive")
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return q.send(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", q.collection), body, nil)
}

func (q *Qdrant) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	points := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		payload := map[string]any{
			"document_id":  c.DocumentID,
			"text":         c.Text,
			"position":     c.Position,
			"start_offset": c.StartOffset,
			"strategy":     string(c.Strategy),
		}
		if c.SiteContext != nil {
			payload["site_context"] = c.SiteContext
		}
		points[i] = map[string]any{
			"id":      c.ID,
			"vector":  c.Embedding,
			"payload": payload,
		}
	}
	body := map[string]any{"points": points}
	return q.send(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", q.collection), body, nil)
}

func (q *Qdrant) DeleteDocument(ctx context.Context, documentID string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "document_id", "match": map[string]any{"value": documentID}},
			},
		},
	}
	return q.send(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/delete?wait=true", q.collection), body, nil)
}

func (q *Qdrant) Search(ctx context.Context, vector []float32, topK int) ([]Candidate, error) {
	if topK <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      any             `json:"id"`
			Score   float64         `json:"score"`
			Payload json.RawMessage `json:"payload"`
		} `json:"result"`
	}
	err := q.send(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", q.collection), req, &resp)
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(resp.Result))
	for _, r := range resp.Result {
		var payload struct {
			DocumentID  string              `json:"document_id"`
			Text        string              `json:"text"`
			Position    int                 `json:"position"`
			StartOffset int                 `json:"start_offset"`
			Strategy    string              `json:"strategy"`
			SiteContext *domain.SiteContext `json:"site_context"`
		}
		if len(r.Payload) > 0 {
			if err := json.Unmarshal(r.Payload, &payload); err != nil {
				return nil, domain.NewIndexUnavailable(fmt.Errorf("decode qdrant payload: %w", err))
			}
		}
		out = append(out, Candidate{
			Chunk: domain.Chunk{
				ID:          fmt.Sprintf("%v", r.ID),
				DocumentID:  payload.DocumentID,
				Text:        payload.Text,
				Position:    payload.Position,
				StartOffset: payload.StartOffset,
				Strategy:    domain.ChunkStrategy(payload.Strategy),
				SiteContext: payload.SiteContext,
			},
			Score: r.Score,
		})
	}
	return out, nil
}

func (q *Qdrant) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := q.send(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/count", q.collection),
		map[string]any{"exact": true}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func (q *Qdrant) Clear(ctx context.Context) error {
	body := map[string]any{"filter": map[string]any{}}
	return q.send(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/delete?wait=true", q.collection), body, nil)
}

func (q *Qdrant) send(ctx context.Context, method, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return domain.NewIndexUnavailable(err)
	}
	req, err := http.NewRequestWithContext(ctx, method, q.url+path, bytes.NewReader(data))
	if err != nil {
		return domain.NewIndexUnavailable(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return domain.NewIndexUnavailable(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return domain.NewIndexUnavailable(fmt.Errorf("qdrant %s %s failed: %s", method, path, resp.Status))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domain.NewIndexUnavailable(err)
		}
	}
	return nil
}
