package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sitelens/sitelens/internal/domain"
)

// ChunkingConfig selects the chunking strategies and their parameters.
type ChunkingConfig struct {
	Strategies        []string `yaml:"strategies"`
	ChunkSize         int      `yaml:"chunk_size"`
	Overlap           int      `yaml:"overlap"`
	SemanticThreshold float64  `yaml:"semantic_threshold"`
}

// HybridConfig weights the semantic and keyword signals during fusion.
type HybridConfig struct {
	SemanticWeight float64 `yaml:"semantic_weight"`
	KeywordWeight  float64 `yaml:"keyword_weight"`
	TopK           int     `yaml:"top_k"`
}

// RerankConfig toggles the post-fusion boost heuristics.
type RerankConfig struct {
	Enabled             bool    `yaml:"enabled"`
	PositionBoostWindow int     `yaml:"position_boost_window"`
	PositionBoostScale  float64 `yaml:"position_boost_scale"`
	SiteContextBoost    float64 `yaml:"site_context_boost"`
	SiteQueryBoost      float64 `yaml:"site_query_boost"`
}

// Index backends.
const (
	IndexBackendMemory   = "memory"
	IndexBackendPGVector = "pgvector"
	IndexBackendQdrant   = "qdrant"
)

// IndexConfig selects the vector index backend.
type IndexConfig struct {
	Backend    string `yaml:"backend"` // pgvector, qdrant, memory
	Collection string `yaml:"collection"`
}

// SourceConfig names a document source to scan during ingestion.
type SourceConfig struct {
	Dir         string `yaml:"dir,omitempty"`
	S3Prefix    string `yaml:"s3_prefix,omitempty"`
	MetadataDir string `yaml:"metadata_dir,omitempty"`
	PDFDerived  bool   `yaml:"pdf_derived,omitempty"`
}

// IngestConfig bounds ingestion parallelism and the rescan worker.
type IngestConfig struct {
	Concurrency      int `yaml:"concurrency"`
	RescanIntervalMS int `yaml:"rescan_interval_ms"`
}

// RetrievalConfig is the root YAML configuration for chunking, hybrid search
// and reranking. It is read once at startup and treated as immutable.
type RetrievalConfig struct {
	Chunking ChunkingConfig `yaml:"chunking"`
	Hybrid   HybridConfig   `yaml:"hybrid"`
	Rerank   RerankConfig   `yaml:"rerank"`
	Index    IndexConfig    `yaml:"index"`
	Sources  []SourceConfig `yaml:"sources"`
	Ingest   IngestConfig   `yaml:"ingest"`
}

// DefaultRetrievalConfig provides the documented defaults.
func DefaultRetrievalConfig() *RetrievalConfig {
	return &RetrievalConfig{
		Chunking: ChunkingConfig{
			Strategies:        []string{string(domain.StrategyRecursive), string(domain.StrategyFixedSize)},
			ChunkSize:         1000,
			Overlap:           200,
			SemanticThreshold: 0.5,
		},
		Hybrid: HybridConfig{
			SemanticWeight: 0.7,
			KeywordWeight:  0.3,
			TopK:           5,
		},
		Rerank: RerankConfig{
			Enabled:             true,
			PositionBoostWindow: 100,
			PositionBoostScale:  0.1,
			SiteContextBoost:    0.15,
			SiteQueryBoost:      0.25,
		},
		Index: IndexConfig{
			Backend:    IndexBackendMemory,
			Collection: "sitelens-chunks",
		},
		Ingest: IngestConfig{
			Concurrency:      4,
			RescanIntervalMS: 0,
		},
	}
}

// LoadRetrieval reads the retrieval config from path, falling back to the
// defaults when the file does not exist. The result is validated; a validation
// failure is fatal to the caller before any ingestion or query work begins.
func LoadRetrieval(path string) (*RetrievalConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := DefaultRetrievalConfig()
			return cfg, cfg.Validate()
		}
		return nil, err
	}

	cfg := DefaultRetrievalConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeConfiguration,
			fmt.Sprintf("failed to parse %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration once at load time so call sites do not
// re-validate ad hoc.
func (c *RetrievalConfig) Validate() error {
	if len(c.Chunking.Strategies) == 0 {
		return domain.NewConfigurationError("chunking.strategies must name at least one strategy")
	}
	seen := make(map[string]bool, len(c.Chunking.Strategies))
	for _, s := range c.Chunking.Strategies {
		if !domain.IsValidStrategy(domain.ChunkStrategy(s)) {
			return domain.NewConfigurationError(fmt.Sprintf("unknown chunking strategy %q", s))
		}
		if seen[s] {
			return domain.NewConfigurationError(fmt.Sprintf("duplicate chunking strategy %q", s))
		}
		seen[s] = true
	}

	if c.Chunking.ChunkSize <= 0 {
		return domain.NewConfigurationError("chunking.chunk_size must be positive")
	}
	if c.Chunking.Overlap < 0 {
		return domain.NewConfigurationError("chunking.overlap cannot be negative")
	}
	if c.Chunking.Overlap >= c.Chunking.ChunkSize {
		return domain.NewConfigurationError("chunking.overlap must be strictly less than chunking.chunk_size")
	}
	if c.Chunking.SemanticThreshold < 0 || c.Chunking.SemanticThreshold > 1 {
		return domain.NewConfigurationError("chunking.semantic_threshold must be in [0,1]")
	}

	if c.Hybrid.SemanticWeight < 0 || c.Hybrid.KeywordWeight < 0 {
		return domain.NewConfigurationError("hybrid weights cannot be negative")
	}
	if c.Hybrid.SemanticWeight == 0 && c.Hybrid.KeywordWeight == 0 {
		return domain.NewConfigurationError("at least one hybrid weight must be positive")
	}
	if c.Hybrid.TopK <= 0 {
		return domain.NewConfigurationError("hybrid.top_k must be positive")
	}

	if c.Rerank.PositionBoostWindow < 0 {
		return domain.NewConfigurationError("rerank.position_boost_window cannot be negative")
	}
	if c.Rerank.PositionBoostScale < 0 {
		return domain.NewConfigurationError("rerank.position_boost_scale cannot be negative")
	}
	if c.Rerank.SiteContextBoost < 0 || c.Rerank.SiteQueryBoost < 0 {
		return domain.NewConfigurationError("rerank boosts cannot be negative")
	}

	switch c.Index.Backend {
	case IndexBackendPGVector, IndexBackendQdrant, IndexBackendMemory:
	default:
		return domain.NewConfigurationError(fmt.Sprintf("unknown index backend %q", c.Index.Backend))
	}

	if c.Ingest.Concurrency < 0 {
		return domain.NewConfigurationError("ingest.concurrency cannot be negative")
	}

	return nil
}

// EnabledStrategies returns the configured strategies as typed constants.
func (c *RetrievalConfig) EnabledStrategies() []domain.ChunkStrategy {
	out := make([]domain.ChunkStrategy, 0, len(c.Chunking.Strategies))
	for _, s := range c.Chunking.Strategies {
		out = append(out, domain.ChunkStrategy(s))
	}
	return out
}

// SemanticEnabled reports whether the semantic strategy is configured.
func (c *RetrievalConfig) SemanticEnabled() bool {
	for _, s := range c.Chunking.Strategies {
		if domain.ChunkStrategy(s) == domain.StrategySemantic {
			return true
		}
	}
	return false
}
