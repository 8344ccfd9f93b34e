package chunking

import "github.com/sitelens/sitelens/internal/domain"

// splitFixed produces chunks of exactly ChunkSize runes (the last may be
// shorter) where consecutive chunks share exactly Overlap runes. Every rune of
// the document belongs to at least one chunk.
func splitFixed(doc *domain.Document, p Params) []domain.Chunk {
	runes := []rune(doc.Content)
	step := p.ChunkSize - p.Overlap

	var spans []span
	for start := 0; start < len(runes); start += step {
		end := start + p.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		spans = append(spans, span{start: start, text: string(runes[start:end])})
		if end == len(runes) {
			break
		}
	}

	return spansToChunks(doc, domain.StrategyFixedSize, spans, false)
}
