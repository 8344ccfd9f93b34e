package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDocument(t *testing.T) {
	doc := NewDocument("doc-1", "docs/guide.md", "# Guide", SourceTypeMarkdown, nil)
	assert.NoError(t, ValidateDocument(doc))
	assert.NotNil(t, doc.Metadata)

	t.Run("invalid source type", func(t *testing.T) {
		d := *doc
		d.SourceType = "spreadsheet"
		assert.Error(t, ValidateDocument(&d))
	})

	t.Run("missing id", func(t *testing.T) {
		d := *doc
		d.ID = ""
		assert.Error(t, ValidateDocument(&d))
	})

	t.Run("undecodable content", func(t *testing.T) {
		d := *doc
		d.Content = string([]byte{0xff, 0xfe, 0xfd})
		err := ValidateDocument(&d)
		assert.Error(t, err)
		assert.True(t, IsDecodeError(err))
	})
}

func TestDocument_TitleFallback(t *testing.T) {
	doc := NewDocument("doc-1", "docs/guide.md", "body", SourceTypeMarkdown, nil)
	assert.Equal(t, "docs/guide.md", doc.Title())

	doc.Metadata["title"] = "The Guide"
	assert.Equal(t, "The Guide", doc.Title())
}

func TestDomainErrorPredicates(t *testing.T) {
	assert.True(t, IsEmbeddingUnavailable(NewEmbeddingUnavailable(assert.AnError)))
	assert.True(t, IsIndexUnavailable(NewIndexUnavailable(assert.AnError)))
	assert.True(t, IsConfigurationError(NewConfigurationError("overlap must be less than chunk size")))
	assert.False(t, IsDecodeError(NewIndexUnavailable(assert.AnError)))
	assert.False(t, IsEmbeddingUnavailable(assert.AnError))
}
