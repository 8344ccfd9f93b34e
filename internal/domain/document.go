package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// SourceType identifies how a document's raw content was produced.
type SourceType string

const (
	SourceTypeMarkdown    SourceType = "markdown"
	SourceTypeJSON        SourceType = "json"
	SourceTypeText        SourceType = "text"
	SourceTypeHTML        SourceType = "html"
	SourceTypePDFMarkdown SourceType = "pdf-derived-markdown"
)

// Document is the raw source unit of ingestion. Documents are immutable after
// scan time; re-ingesting the same ID supersedes the previous chunk set.
type Document struct {
	ID         string
	Path       string
	Content    string
	SourceType SourceType
	Metadata   map[string]string
	ScannedAt  time.Time
}

// NewDocument creates a Document instance.
func NewDocument(id, path, content string, sourceType SourceType, metadata map[string]string) *Document {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &Document{
		ID:         id,
		Path:       path,
		Content:    content,
		SourceType: sourceType,
		Metadata:   metadata,
		ScannedAt:  time.Now().UTC(),
	}
}

// ValidateDocument validates a Document instance.
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}
	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if d.Path == "" {
		return fmt.Errorf("document Path is required")
	}
	if !isValidSourceType(d.SourceType) {
		return fmt.Errorf("document SourceType is invalid: %s", d.SourceType)
	}
	if !utf8.ValidString(d.Content) {
		return NewDomainErrorWithCause(ErrCodeDecode, "document content is not valid UTF-8",
			fmt.Errorf("document %s", d.ID))
	}
	return nil
}

func isValidSourceType(s SourceType) bool {
	switch s {
	case SourceTypeMarkdown, SourceTypeJSON, SourceTypeText,
		SourceTypeHTML, SourceTypePDFMarkdown:
		return true
	}
	return false
}

// Title returns the document's title metadata, falling back to its path.
func (d *Document) Title() string {
	if t := d.Metadata["title"]; t != "" {
		return t
	}
	return d.Path
}

// URL returns the url metadata attached at scan time, if any.
func (d *Document) URL() string {
	return d.Metadata["url"]
}
