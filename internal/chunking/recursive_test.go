package chunking

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitelens/sitelens/internal/domain"
)

func TestSplitRecursive_ChunksWithinLimit(t *testing.T) {
	paragraphs := []string{
		"Retrieval systems split documents into chunks. Each chunk becomes a unit of search.",
		"Hybrid search combines two signals. The semantic signal uses embeddings. The keyword signal counts term overlap.",
		"Reranking adjusts the fused order. Boosts reward early matches and site context.",
	}
	doc := testDoc(strings.Join(paragraphs, "\n\n"))

	chunks, err := Split(context.Background(), doc, domain.StrategyRecursive, Params{ChunkSize: 90})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Text), 90)
	}
}

func TestSplitRecursive_OrderedNonOverlapping(t *testing.T) {
	doc := testDoc(strings.Repeat("one two three four five. six seven eight nine ten.\n\n", 10))

	chunks, err := Split(context.Background(), doc, domain.StrategyRecursive, Params{ChunkSize: 60})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	prevEnd := -1
	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
		assert.Greater(t, c.StartOffset, prevEnd)
		prevEnd = c.StartOffset + utf8.RuneCountInString(c.Text) - 1
	}
}

func TestSplitRecursive_PrefersSentenceBoundaries(t *testing.T) {
	doc := testDoc("First sentence here. Second sentence here. Third sentence here.")

	chunks, err := Split(context.Background(), doc, domain.StrategyRecursive, Params{ChunkSize: 25})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// With sentences of ~20 runes and a 25-rune budget, splits should land on
	// sentence boundaries rather than inside words.
	for _, c := range chunks {
		assert.NotRegexp(t, `^[a-z]`, strings.TrimPrefix(c.Text, " "),
			"chunk starts mid-sentence: %q", c.Text)
	}
}

func TestSplitRecursive_ShortDocumentSingleChunk(t *testing.T) {
	doc := testDoc("A short note.")

	chunks, err := Split(context.Background(), doc, domain.StrategyRecursive, Params{ChunkSize: 100})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short note.", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].StartOffset)
}

func TestSplitRecursive_AtomicUnitHardSplit(t *testing.T) {
	// A single 50-rune token cannot be kept under a 20-rune budget by any
	// separator; only then is a mid-word split allowed.
	token := strings.Repeat("x", 50)
	doc := testDoc(token)

	chunks, err := Split(context.Background(), doc, domain.StrategyRecursive, Params{ChunkSize: 20})
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	var rebuilt strings.Builder
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Text), 20)
		rebuilt.WriteString(c.Text)
	}
	assert.Equal(t, token, rebuilt.String())
}

func TestSplitRecursive_MergesSmallPartsUpToLimit(t *testing.T) {
	doc := testDoc("alpha\nbravo\ncharlie\ndelta")

	chunks, err := Split(context.Background(), doc, domain.StrategyRecursive, Params{ChunkSize: 13})
	require.NoError(t, err)

	// "alpha\nbravo" is 11 runes, "charlie\ndelta" is 13; both fit while the
	// whole text (25) does not.
	require.Len(t, chunks, 2)
	assert.Equal(t, "alpha\nbravo", chunks[0].Text)
	assert.Equal(t, "charlie\ndelta", chunks[1].Text)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, 12, chunks[1].StartOffset)
}
