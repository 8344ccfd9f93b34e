package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ChunkStrategy names the chunking strategy that produced a chunk.
type ChunkStrategy string

const (
	StrategyFixedSize ChunkStrategy = "fixed-size"
	StrategyRecursive ChunkStrategy = "recursive"
	StrategySemantic  ChunkStrategy = "semantic"
)

// IsValidStrategy reports whether s names a known chunking strategy.
func IsValidStrategy(s ChunkStrategy) bool {
	switch s {
	case StrategyFixedSize, StrategyRecursive, StrategySemantic:
		return true
	}
	return false
}

// NavLink is a single navigation entry from a matched site page.
type NavLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// SiteContext carries the navigational metadata attached to a chunk when its
// source document was matched to a known site page.
type SiteContext struct {
	SiteTitle string    `json:"site_title,omitempty"`
	SiteURL   string    `json:"site_url,omitempty"`
	NavLinks  []NavLink `json:"nav_links,omitempty"`
}

// HasNavLinks reports whether the context carries at least one navigation link.
func (sc *SiteContext) HasNavLinks() bool {
	return sc != nil && len(sc.NavLinks) > 0
}

// Chunk is a contiguous span of a document's content, the unit of retrieval.
// Chunks are written once to the vector index and never mutated in place.
type Chunk struct {
	ID          string
	DocumentID  string
	Text        string
	Position    int
	StartOffset int
	Strategy    ChunkStrategy
	SiteContext *SiteContext
	Embedding   []float32
}

// ChunkID derives the stable chunk identifier from its document, strategy and
// start offset, so repeated ingestion of the same document reproduces the same
// IDs.
func ChunkID(documentID string, strategy ChunkStrategy, startOffset int) string {
	key := fmt.Sprintf("%s/%s/%d", documentID, strategy, startOffset)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// ValidateChunk validates a Chunk instance.
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}
	if c.ID == "" {
		return fmt.Errorf("chunk ID is required")
	}
	if c.DocumentID == "" {
		return fmt.Errorf("chunk DocumentID is required")
	}
	if c.Position < 0 {
		return fmt.Errorf("chunk Position cannot be negative")
	}
	if c.StartOffset < 0 {
		return fmt.Errorf("chunk StartOffset cannot be negative")
	}
	if !IsValidStrategy(c.Strategy) {
		return fmt.Errorf("chunk Strategy is invalid: %s", c.Strategy)
	}
	return nil
}
