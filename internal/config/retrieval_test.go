package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitelens/sitelens/internal/domain"
)

func TestLoadRetrieval_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadRetrieval(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Chunking.ChunkSize)
	assert.Equal(t, 200, cfg.Chunking.Overlap)
	assert.Equal(t, 0.7, cfg.Hybrid.SemanticWeight)
	assert.Equal(t, 0.3, cfg.Hybrid.KeywordWeight)
	assert.True(t, cfg.Rerank.Enabled)
	assert.Equal(t, 0.15, cfg.Rerank.SiteContextBoost)
	assert.Equal(t, 0.25, cfg.Rerank.SiteQueryBoost)
}

func TestLoadRetrieval_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitelens.yaml")
	content := `
chunking:
  strategies: [fixed-size]
  chunk_size: 400
  overlap: 50
hybrid:
  semantic_weight: 1.0
  keyword_weight: 0.0
  top_k: 10
rerank:
  enabled: false
index:
  backend: qdrant
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadRetrieval(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"fixed-size"}, cfg.Chunking.Strategies)
	assert.Equal(t, 400, cfg.Chunking.ChunkSize)
	assert.Equal(t, 50, cfg.Chunking.Overlap)
	assert.Equal(t, 1.0, cfg.Hybrid.SemanticWeight)
	assert.False(t, cfg.Rerank.Enabled)
	assert.Equal(t, "qdrant", cfg.Index.Backend)
	// Untouched sections keep their defaults.
	assert.Equal(t, 100, cfg.Rerank.PositionBoostWindow)
}

func TestRetrievalConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *RetrievalConfig)
	}{
		{"unknown strategy", func(c *RetrievalConfig) { c.Chunking.Strategies = []string{"sliding"} }},
		{"no strategies", func(c *RetrievalConfig) { c.Chunking.Strategies = nil }},
		{"duplicate strategy", func(c *RetrievalConfig) {
			c.Chunking.Strategies = []string{"recursive", "recursive"}
		}},
		{"overlap >= chunk size", func(c *RetrievalConfig) { c.Chunking.Overlap = c.Chunking.ChunkSize }},
		{"zero chunk size", func(c *RetrievalConfig) { c.Chunking.ChunkSize = 0 }},
		{"negative semantic weight", func(c *RetrievalConfig) { c.Hybrid.SemanticWeight = -0.1 }},
		{"negative keyword weight", func(c *RetrievalConfig) { c.Hybrid.KeywordWeight = -1 }},
		{"both weights zero", func(c *RetrievalConfig) {
			c.Hybrid.SemanticWeight = 0
			c.Hybrid.KeywordWeight = 0
		}},
		{"zero top_k", func(c *RetrievalConfig) { c.Hybrid.TopK = 0 }},
		{"negative boost", func(c *RetrievalConfig) { c.Rerank.SiteContextBoost = -0.15 }},
		{"unknown backend", func(c *RetrievalConfig) { c.Index.Backend = "faiss" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRetrievalConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, domain.IsConfigurationError(err))
		})
	}
}

func TestRetrievalConfig_EnabledStrategies(t *testing.T) {
	cfg := DefaultRetrievalConfig()
	assert.Equal(t,
		[]domain.ChunkStrategy{domain.StrategyRecursive, domain.StrategyFixedSize},
		cfg.EnabledStrategies())
	assert.False(t, cfg.SemanticEnabled())

	cfg.Chunking.Strategies = append(cfg.Chunking.Strategies, string(domain.StrategySemantic))
	assert.True(t, cfg.SemanticEnabled())
}
