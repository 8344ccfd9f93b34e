package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitelens/sitelens/internal/domain"
)

func memChunk(id, docID string, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:         id,
		DocumentID: docID,
		Text:       "text for " + id,
		Strategy:   domain.StrategyFixedSize,
		Embedding:  embedding,
	}
}

func TestMemory_SearchRanksByCosineSimilarity(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()

	require.NoError(t, idx.Upsert(ctx, []domain.Chunk{
		memChunk("c-far", "doc-1", []float32{0, 1, 0}),
		memChunk("c-near", "doc-1", []float32{1, 0.1, 0}),
		memChunk("c-mid", "doc-2", []float32{0.5, 0.5, 0}),
	}))

	got, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "c-near", got[0].Chunk.ID)
	assert.Equal(t, "c-mid", got[1].Chunk.ID)
	assert.Greater(t, got[0].Score, got[1].Score)
}

func TestMemory_UpsertReplacesExistingChunk(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()

	require.NoError(t, idx.Upsert(ctx, []domain.Chunk{memChunk("c1", "doc-1", []float32{1, 0})}))
	updated := memChunk("c1", "doc-1", []float32{0, 1})
	updated.Text = "updated"
	require.NoError(t, idx.Upsert(ctx, []domain.Chunk{updated}))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := idx.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "updated", got[0].Chunk.Text)
}

func TestMemory_DeleteDocumentRemovesOnlyItsChunks(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()

	require.NoError(t, idx.Upsert(ctx, []domain.Chunk{
		memChunk("c1", "doc-1", []float32{1, 0}),
		memChunk("c2", "doc-1", []float32{0, 1}),
		memChunk("c3", "doc-2", []float32{1, 1}),
	}))

	require.NoError(t, idx.DeleteDocument(ctx, "doc-1"))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := idx.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c3", got[0].Chunk.ID)
}

func TestMemory_Clear(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()

	require.NoError(t, idx.Upsert(ctx, []domain.Chunk{memChunk("c1", "doc-1", []float32{1})}))
	require.NoError(t, idx.Clear(ctx))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemory_SearchEmptyIndex(t *testing.T) {
	got, err := NewMemory().Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemory_TopKZero(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory()
	require.NoError(t, idx.Upsert(ctx, []domain.Chunk{memChunk("c1", "doc-1", []float32{1})}))

	got, err := idx.Search(ctx, []float32{1}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
