package chunking

import (
	"strings"
	"unicode/utf8"

	"github.com/sitelens/sitelens/internal/domain"
)

// recursiveSeparators is the boundary priority order: paragraph, line,
// sentence, word, and finally a hard rune split for atomic units.
var recursiveSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// splitRecursive produces chunks of at most ChunkSize runes, preferring the
// most natural boundary that yields a small-enough span. A span is only split
// mid-word when no separator can bring it under the limit.
func splitRecursive(doc *domain.Document, p Params) []domain.Chunk {
	spans := recurse(doc.Content, 0, recursiveSeparators, p.ChunkSize)
	return spansToChunks(doc, domain.StrategyRecursive, spans, true)
}

func recurse(text string, base int, seps []string, chunkSize int) []span {
	if utf8.RuneCountInString(text) <= chunkSize {
		return []span{{start: base, text: text}}
	}
	if len(seps) == 0 || seps[0] == "" {
		return hardSplit(text, base, chunkSize)
	}

	sep := seps[0]
	parts := strings.Split(text, sep)
	if len(parts) == 1 {
		// Separator absent at this level; fall through to the next one.
		return recurse(text, base, seps[1:], chunkSize)
	}

	sepLen := utf8.RuneCountInString(sep)
	var out []span

	// Greedily merge adjacent parts into spans that stay under chunkSize,
	// keeping the separator text inside the merged span.
	var buf strings.Builder
	bufStart := base
	bufLen := 0
	offset := base

	flush := func() {
		if buf.Len() > 0 {
			out = append(out, span{start: bufStart, text: buf.String()})
			buf.Reset()
			bufLen = 0
		}
	}

	for i, part := range parts {
		partLen := utf8.RuneCountInString(part)

		if partLen > chunkSize {
			// Oversized part: flush what we have, then descend with finer
			// separators.
			flush()
			out = append(out, recurse(part, offset, seps[1:], chunkSize)...)
		} else {
			add := partLen
			if bufLen > 0 {
				add += sepLen
			}
			if bufLen+add > chunkSize {
				flush()
			}
			if buf.Len() == 0 {
				bufStart = offset
			} else {
				buf.WriteString(sep)
				bufLen += sepLen
			}
			buf.WriteString(part)
			bufLen += partLen
		}

		offset += partLen
		if i < len(parts)-1 {
			offset += sepLen
		}
	}
	flush()

	return out
}

// hardSplit cuts text into chunkSize-rune pieces when no separator applies.
func hardSplit(text string, base int, chunkSize int) []span {
	runes := []rune(text)
	var out []span
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, span{start: base + start, text: string(runes[start:end])})
	}
	return out
}
