package chunking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitelens/sitelens/internal/domain"
)

// vectorsFor returns a SimilarityFunc that hands out the given vectors in
// order, one per input text.
func vectorsFor(t *testing.T, vectors [][]float32) SimilarityFunc {
	return func(ctx context.Context, texts []string) ([][]float32, error) {
		require.Len(t, texts, len(vectors))
		return vectors, nil
	}
}

func TestSplitSemantic_GroupsByCohesion(t *testing.T) {
	doc := testDoc("Cats purr. Cats nap often. Rockets burn fuel. Rockets reach orbit.")

	// First two sentences point one way, last two another; cohesion collapses
	// at the topic switch.
	chunks, err := Split(context.Background(), doc, domain.StrategySemantic, Params{
		ChunkSize:         500,
		SemanticThreshold: 0.7,
		Similarity: vectorsFor(t, [][]float32{
			{1, 0},
			{0.9, 0.1},
			{0, 1},
			{0.1, 0.9},
		}),
	})
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Contains(t, chunks[0].Text, "Cats purr.")
	assert.Contains(t, chunks[0].Text, "Cats nap often.")
	assert.Contains(t, chunks[1].Text, "Rockets burn fuel.")
	assert.Contains(t, chunks[1].Text, "Rockets reach orbit.")
	assert.Less(t, chunks[0].StartOffset, chunks[1].StartOffset)
}

func TestSplitSemantic_SingleCohesiveChunk(t *testing.T) {
	doc := testDoc("One idea. Same idea. Still the same idea.")

	chunks, err := Split(context.Background(), doc, domain.StrategySemantic, Params{
		ChunkSize:         500,
		SemanticThreshold: 0.5,
		Similarity: vectorsFor(t, [][]float32{
			{1, 0},
			{1, 0},
			{1, 0},
		}),
	})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].StartOffset)
}

func TestSplitSemantic_SizeLimitBreaksCohesiveRun(t *testing.T) {
	doc := testDoc("Alpha beta gamma delta. Epsilon zeta eta theta. Iota kappa lambda mu.")

	// All neighbors are perfectly cohesive, but the chunk budget forces a
	// break once the accumulated group would exceed it.
	chunks, err := Split(context.Background(), doc, domain.StrategySemantic, Params{
		ChunkSize:         40,
		SemanticThreshold: 0.5,
		Similarity: vectorsFor(t, [][]float32{
			{1, 0},
			{1, 0},
			{1, 0},
		}),
	})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
}

func TestSplitSemantic_RequiresSimilarityProvider(t *testing.T) {
	_, err := Split(context.Background(), testDoc("Some text."), domain.StrategySemantic, Params{
		ChunkSize:         500,
		SemanticThreshold: 0.7,
	})
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestSplitSemantic_ProviderErrorPropagates(t *testing.T) {
	boom := errors.New("embedding backend down")
	_, err := Split(context.Background(), testDoc("Some text. More text."), domain.StrategySemantic, Params{
		ChunkSize:         500,
		SemanticThreshold: 0.7,
		Similarity: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, domain.NewEmbeddingUnavailable(boom)
		},
	})
	require.Error(t, err)
	assert.True(t, domain.IsEmbeddingUnavailable(err))
	assert.ErrorIs(t, err, boom)
}

func TestSplitSemantic_VectorCountMismatch(t *testing.T) {
	_, err := Split(context.Background(), testDoc("One. Two. Three."), domain.StrategySemantic, Params{
		ChunkSize:         500,
		SemanticThreshold: 0.7,
		Similarity: func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1, 0}}, nil
		},
	})
	require.Error(t, err)
	assert.True(t, domain.IsEmbeddingUnavailable(err))
}
