// Package chunking splits documents into ordered, retrievable chunks under a
// selected strategy.
package chunking

import (
	"context"
	"fmt"
	"strings"

	"github.com/sitelens/sitelens/internal/domain"
)

// SimilarityFunc supplies embeddings for the semantic strategy's cohesion
// measure. It is typically backed by the embedding gateway.
type SimilarityFunc func(ctx context.Context, texts []string) ([][]float32, error)

// Params carries the per-strategy parameters for a Split call.
type Params struct {
	ChunkSize         int
	Overlap           int
	SemanticThreshold float64
	Similarity        SimilarityFunc
}

// DefaultParams provides sane defaults for chunking.
func DefaultParams() Params {
	return Params{
		ChunkSize:         1000,
		Overlap:           200,
		SemanticThreshold: 0.5,
	}
}

// Split chunks a document under the given strategy. An empty document yields
// zero chunks and no error. Chunk IDs are deterministic so repeated calls with
// the same inputs produce identical chunk sets.
func Split(ctx context.Context, doc *domain.Document, strategy domain.ChunkStrategy, p Params) ([]domain.Chunk, error) {
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}
	if p.ChunkSize <= 0 {
		return nil, domain.NewConfigurationError("chunk size must be positive")
	}

	switch strategy {
	case domain.StrategyFixedSize:
		if p.Overlap < 0 || p.Overlap >= p.ChunkSize {
			return nil, domain.NewConfigurationError("overlap must be in [0, chunk_size)")
		}
		return splitFixed(doc, p), nil
	case domain.StrategyRecursive:
		return splitRecursive(doc, p), nil
	case domain.StrategySemantic:
		return splitSemantic(ctx, doc, p)
	default:
		return nil, domain.NewConfigurationError(fmt.Sprintf("unknown chunking strategy %q", strategy))
	}
}

// span is an intermediate piece of document text with its rune offset.
type span struct {
	start int
	text  string
}

// spansToChunks converts spans to chunks with ordinal positions. dropBlank
// discards whitespace-only spans; the fixed-size strategy keeps them to
// preserve full coverage of the document.
func spansToChunks(doc *domain.Document, strategy domain.ChunkStrategy, spans []span, dropBlank bool) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(spans))
	for _, s := range spans {
		if dropBlank && strings.TrimSpace(s.text) == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:          domain.ChunkID(doc.ID, strategy, s.start),
			DocumentID:  doc.ID,
			Text:        s.text,
			Position:    len(chunks),
			StartOffset: s.start,
			Strategy:    strategy,
		})
	}
	return chunks
}
