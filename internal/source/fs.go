package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sitelens/sitelens/internal/domain"
)

// FS scans a directory tree for documents. Sidecar metadata files produced by
// the crawler live in a separate metadata directory, keyed by the document's
// file stem.
type FS struct {
	root        string
	metadataDir string
	pdfDerived  bool
}

// NewFS creates a filesystem source rooted at root. metadataDir may be empty
// when no crawler metadata exists. pdfDerived marks every markdown file in
// the tree as rendered from a PDF.
func NewFS(root, metadataDir string, pdfDerived bool) *FS {
	return &FS{root: root, metadataDir: metadataDir, pdfDerived: pdfDerived}
}

// Scan walks the tree and returns one document per recognized file. The
// document ID and path are the slash-separated path relative to the root, so
// re-scanning yields the same IDs.
func (s *FS) Scan(ctx context.Context) ([]*domain.Document, error) {
	metaDirAbs := ""
	if s.metadataDir != "" {
		if abs, err := filepath.Abs(s.metadataDir); err == nil {
			metaDirAbs = abs
		}
	}

	var rels []string
	relSet := make(map[string]struct{})

	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != s.root {
				return filepath.SkipDir
			}
			if metaDirAbs != "" {
				if abs, err := filepath.Abs(p); err == nil && abs == metaDirAbs {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if _, ok := sourceTypeFor(p, s.pdfDerived); !ok {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		rels = append(rels, rel)
		relSet[rel] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var docs []*domain.Document
	for _, rel := range rels {
		st, _ := sourceTypeFor(rel, s.pdfDerived)
		// A .json file sitting next to the document it describes is
		// metadata, not a document of its own.
		if strings.HasSuffix(rel, ".json") && isSidecar(rel, relSet) {
			continue
		}

		content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}

		docs = append(docs, buildDocument(rel, rel, content, st, s.sidecarMetadata(rel)))
	}
	return docs, nil
}

// sidecarMetadata loads the crawler's metadata JSON for a document, trying
// <stem>.json first and <stem>.html.json second.
func (s *FS) sidecarMetadata(rel string) map[string]string {
	if s.metadataDir == "" {
		return nil
	}

	stem := path.Base(rel)
	if ext := path.Ext(stem); ext != "" {
		stem = strings.TrimSuffix(stem, ext)
	}

	for _, name := range []string{stem + ".json", stem + ".html.json"} {
		raw, err := os.ReadFile(filepath.Join(s.metadataDir, name))
		if err != nil {
			continue
		}
		if meta := flattenMetadata(raw); meta != nil {
			return meta
		}
	}
	return nil
}
