package index

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/sitelens/sitelens/internal/domain"
)

// Memory is an in-memory Index using cosine similarity. It is safe for
// concurrent use and never fails, which makes it the default backend for
// tests and single-process runs.
type Memory struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk
}

func NewMemory() *Memory {
	return &Memory{chunks: map[string]domain.Chunk{}}
}

func (m *Memory) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.chunks[c.ID] = c
	}
	return nil
}

func (m *Memory) DeleteDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.chunks {
		if c.DocumentID == documentID {
			delete(m.chunks, id)
		}
	}
	return nil
}

func (m *Memory) Search(ctx context.Context, vector []float32, topK int) ([]Candidate, error) {
	if topK <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	candidates := make([]Candidate, 0, len(m.chunks))
	for _, c := range m.chunks {
		candidates = append(candidates, Candidate{
			Chunk: c,
			Score: cosineSimilarity(vector, c.Embedding),
		})
	}
	m.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Chunk.ID < candidates[j].Chunk.ID
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

func (m *Memory) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = map[string]domain.Chunk{}
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
