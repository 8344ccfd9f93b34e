package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID_Deterministic(t *testing.T) {
	a := ChunkID("doc-1", StrategyFixedSize, 0)
	b := ChunkID("doc-1", StrategyFixedSize, 0)
	assert.Equal(t, a, b)
}

func TestChunkID_DistinguishesInputs(t *testing.T) {
	base := ChunkID("doc-1", StrategyFixedSize, 0)

	assert.NotEqual(t, base, ChunkID("doc-2", StrategyFixedSize, 0))
	assert.NotEqual(t, base, ChunkID("doc-1", StrategyRecursive, 0))
	assert.NotEqual(t, base, ChunkID("doc-1", StrategyFixedSize, 100))
}

func TestValidateChunk(t *testing.T) {
	valid := &Chunk{
		ID:         ChunkID("doc-1", StrategyRecursive, 0),
		DocumentID: "doc-1",
		Text:       "some text",
		Strategy:   StrategyRecursive,
	}
	assert.NoError(t, ValidateChunk(valid))

	tests := []struct {
		name   string
		mutate func(c *Chunk)
	}{
		{"nil strategy", func(c *Chunk) { c.Strategy = "" }},
		{"unknown strategy", func(c *Chunk) { c.Strategy = "sliding-window" }},
		{"missing document", func(c *Chunk) { c.DocumentID = "" }},
		{"missing id", func(c *Chunk) { c.ID = "" }},
		{"negative position", func(c *Chunk) { c.Position = -1 }},
		{"negative offset", func(c *Chunk) { c.StartOffset = -3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *valid
			tt.mutate(&c)
			assert.Error(t, ValidateChunk(&c))
		})
	}
}

func TestSiteContext_HasNavLinks(t *testing.T) {
	var nilCtx *SiteContext
	assert.False(t, nilCtx.HasNavLinks())
	assert.False(t, (&SiteContext{SiteTitle: "Docs"}).HasNavLinks())
	assert.True(t, (&SiteContext{NavLinks: []NavLink{{Label: "Home", URL: "/"}}}).HasNavLinks())
}
