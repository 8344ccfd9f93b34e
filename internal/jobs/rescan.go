package jobs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sitelens/sitelens/internal/domain"
	"github.com/sitelens/sitelens/internal/index"
	"github.com/sitelens/sitelens/internal/service"
)

// Rescanner re-scans the document sources on each poll and re-ingests only
// the documents whose content changed since the previous pass. Documents that
// disappeared from the sources have their chunks removed from the index.
type Rescanner struct {
	ingest *service.IngestService
	index  index.Index
	logger zerolog.Logger

	mu     sync.Mutex
	hashes map[string]string
}

func NewRescanner(ingest *service.IngestService, idx index.Index, logger zerolog.Logger) *Rescanner {
	return &Rescanner{
		ingest: ingest,
		index:  idx,
		logger: logger,
		hashes: map[string]string{},
	}
}

// ProcessJobs runs one rescan pass.
func (r *Rescanner) ProcessJobs(ctx context.Context) error {
	docs, err := r.ingest.ScanAll(ctx)
	if err != nil {
		return fmt.Errorf("rescan: %w", err)
	}

	r.mu.Lock()
	var changed []*domain.Document
	seen := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		seen[doc.ID] = struct{}{}
		if r.hashes[doc.ID] != contentHash(doc.Content) {
			changed = append(changed, doc)
		}
	}
	var removed []string
	for id := range r.hashes {
		if _, ok := seen[id]; !ok {
			removed = append(removed, id)
		}
	}
	r.mu.Unlock()

	for _, id := range removed {
		if err := r.index.DeleteDocument(ctx, id); err != nil {
			r.logger.Warn().Str("document_id", id).Err(err).Msg("failed to remove deleted document")
			continue
		}
		r.mu.Lock()
		delete(r.hashes, id)
		r.mu.Unlock()
		r.logger.Info().Str("document_id", id).Msg("removed deleted document from index")
	}

	if len(changed) == 0 {
		return nil
	}

	report, err := r.ingest.IngestDocuments(ctx, changed, docs)
	if err != nil {
		return fmt.Errorf("rescan ingest: %w", err)
	}

	r.mu.Lock()
	for _, dr := range report.Documents {
		if dr.Err == nil {
			r.hashes[dr.DocumentID] = contentHashByID(changed, dr.DocumentID)
		}
	}
	r.mu.Unlock()

	r.logger.Info().
		Int("changed", len(changed)).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("rescan pass complete")
	return nil
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func contentHashByID(docs []*domain.Document, id string) string {
	for _, d := range docs {
		if d.ID == id {
			return contentHash(d.Content)
		}
	}
	return ""
}
