// Package search implements the lexical scoring, hybrid score fusion and
// reranking stages of the query pipeline. Everything in this package is a pure
// function of its inputs and the active configuration.
package search

import "strings"

const (
	presenceWeight  = 0.5
	frequencyWeight = 0.3
)

// KeywordScore computes a lexical relevance score for query against text.
// The score is presenceWeight times the fraction of distinct query terms
// present plus frequencyWeight times the matched occurrence count normalized
// by the chunk's token count, capped at 1. The frequency denominator depends
// only on the chunk, so matching one more distinct term never lowers the
// score. It is 0 when no query term occurs in the text and never negative.
func KeywordScore(query, text string) float64 {
	terms := QueryTerms(query)
	if len(terms) == 0 {
		return 0
	}

	textLower := strings.ToLower(text)

	matched := 0
	totalCount := 0
	for _, term := range terms {
		if count := strings.Count(textLower, term); count > 0 {
			matched++
			totalCount += count
		}
	}
	if matched == 0 {
		return 0
	}

	presence := float64(matched) / float64(len(terms))
	frequency := float64(totalCount) / float64(len(strings.Fields(textLower)))
	if frequency > 1 {
		frequency = 1
	}
	return presenceWeight*presence + frequencyWeight*frequency
}

// QueryTerms tokenizes a query into distinct lowercase terms, dropping
// single-character tokens.
func QueryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, `.,;:!?"'()[]`)
		if len(f) < 2 {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}
