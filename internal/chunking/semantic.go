package chunking

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/sitelens/sitelens/internal/domain"
)

// splitSemantic groups consecutive sentences while the embedding similarity
// between neighbors stays at or above the threshold, starting a new chunk when
// cohesion drops or the chunk would exceed ChunkSize runes. The strategy
// requires an external similarity signal and fails fast without one.
func splitSemantic(ctx context.Context, doc *domain.Document, p Params) ([]domain.Chunk, error) {
	if p.Similarity == nil {
		return nil, domain.NewConfigurationError("semantic chunking requires a similarity provider")
	}

	runes := []rune(doc.Content)
	sentences := sentenceSpans(runes)
	if len(sentences) == 0 {
		return nil, nil
	}

	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = strings.TrimSpace(string(runes[s.start:s.end]))
	}

	vectors, err := p.Similarity(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(sentences) {
		return nil, domain.NewEmbeddingUnavailable(
			errVectorCount{want: len(sentences), got: len(vectors)})
	}

	threshold := p.SemanticThreshold

	var spans []span
	groupStart := sentences[0].start
	groupEnd := sentences[0].end
	for i := 1; i < len(sentences); i++ {
		cohesion := cosine(vectors[i-1], vectors[i])
		groupLen := sentences[i].end - groupStart
		if cohesion < threshold || groupLen > p.ChunkSize {
			spans = append(spans, span{start: groupStart, text: string(runes[groupStart:groupEnd])})
			groupStart = sentences[i].start
		}
		groupEnd = sentences[i].end
	}
	spans = append(spans, span{start: groupStart, text: string(runes[groupStart:groupEnd])})

	return spansToChunks(doc, domain.StrategySemantic, spans, true), nil
}

type errVectorCount struct{ want, got int }

func (e errVectorCount) Error() string {
	return "similarity provider returned wrong vector count"
}

// sentSpan is a sentence's half-open rune range within the document.
type sentSpan struct {
	start int
	end   int
}

// sentenceSpans splits text into contiguous sentence ranges. A sentence ends
// after '.', '!' or '?' followed by whitespace, or at a blank line.
func sentenceSpans(runes []rune) []sentSpan {
	var spans []sentSpan
	start := 0

	flush := func(end int) {
		if strings.TrimSpace(string(runes[start:end])) != "" {
			spans = append(spans, sentSpan{start: start, end: end})
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				flush(i + 1)
			}
		case '\n':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				flush(i + 1)
			}
		}
	}
	if start < len(runes) {
		flush(len(runes))
	}

	return spans
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
