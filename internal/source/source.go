// Package source supplies documents to ingestion. A source enumerates raw
// files from a backing store (local directory tree or S3 bucket) and turns
// them into documents with stable IDs and paths; it never interprets content
// beyond detecting the source type.
package source

import (
	"context"
	"encoding/json"
	"path"
	"strings"

	"github.com/sitelens/sitelens/internal/domain"
)

// Source enumerates the documents of one configured location.
type Source interface {
	Scan(ctx context.Context) ([]*domain.Document, error)
}

// sourceTypeFor maps a file extension to a document source type. Unrecognized
// extensions yield false and the file is skipped.
func sourceTypeFor(filePath string, pdfDerived bool) (domain.SourceType, bool) {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".md", ".markdown":
		if pdfDerived {
			return domain.SourceTypePDFMarkdown, true
		}
		return domain.SourceTypeMarkdown, true
	case ".json":
		return domain.SourceTypeJSON, true
	case ".txt":
		return domain.SourceTypeText, true
	case ".html", ".htm":
		return domain.SourceTypeHTML, true
	}
	return "", false
}

// flattenMetadata converts a sidecar JSON object into the string map carried
// on documents. Nested values such as navigation link arrays are kept as
// their JSON encoding so downstream consumers can decode them.
func flattenMetadata(raw []byte) map[string]string {
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil
	}
	out := make(map[string]string, len(parsed))
	for k, v := range parsed {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
		default:
			if enc, err := json.Marshal(val); err == nil {
				out[k] = string(enc)
			}
		}
	}
	return out
}

// titleFromContent extracts the first markdown heading, used as a fallback
// title when the sidecar metadata carries none.
func titleFromContent(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if t, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(t)
		}
	}
	return ""
}

// buildDocument assembles a document from scanned file parts, filling the
// title from content when metadata has none.
func buildDocument(id, docPath string, content []byte, st domain.SourceType, metadata map[string]string) *domain.Document {
	if metadata == nil {
		metadata = map[string]string{}
	}
	if metadata["title"] == "" {
		if t := titleFromContent(string(content)); t != "" {
			metadata["title"] = t
		}
	}
	return domain.NewDocument(id, docPath, string(content), st, metadata)
}
