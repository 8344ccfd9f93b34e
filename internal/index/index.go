// Package index provides the vector index boundary: chunk storage keyed by
// embedding with nearest-neighbor search. Backends exist for pgvector, Qdrant
// and an in-memory store used by tests and single-process setups.
package index

import (
	"context"

	"github.com/sitelens/sitelens/internal/domain"
)

// Candidate is one nearest-neighbor hit with its similarity score.
type Candidate struct {
	Chunk domain.Chunk
	Score float64
}

// Index stores embedded chunks and answers nearest-neighbor queries. Backend
// failures surface as INDEX_UNAVAILABLE domain errors; callers abort the
// affected unit of work rather than retrying here.
type Index interface {
	// Upsert writes chunks, replacing any existing chunk with the same ID.
	Upsert(ctx context.Context, chunks []domain.Chunk) error
	// DeleteDocument removes every chunk belonging to the document.
	DeleteDocument(ctx context.Context, documentID string) error
	// Search returns up to topK candidates ordered by descending similarity.
	Search(ctx context.Context, vector []float32, topK int) ([]Candidate, error)
	// Count reports the number of stored chunks.
	Count(ctx context.Context) (int, error)
	// Clear removes all stored chunks.
	Clear(ctx context.Context) error
}
