package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sitelens/sitelens/internal/chunking"
	"github.com/sitelens/sitelens/internal/config"
	"github.com/sitelens/sitelens/internal/domain"
	"github.com/sitelens/sitelens/internal/index"
	"github.com/sitelens/sitelens/internal/sitelink"
	"github.com/sitelens/sitelens/internal/source"
	"github.com/sitelens/sitelens/internal/telemetry"
)

// Embedder defines the interface for the embedding gateway
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// DocumentReport is the per-document outcome of one ingestion run.
type DocumentReport struct {
	DocumentID string
	Path       string
	Chunks     int
	Linked     bool
	Err        error
}

// IngestReport summarizes an ingestion run. A failed document never aborts
// the batch; it is recorded here and the run continues.
type IngestReport struct {
	Documents []DocumentReport
	Succeeded int
	Failed    int
	Chunks    int
}

// IngestService drives the ingestion path: scan sources, chunk each document
// with every enabled strategy, attach site context to PDF-derived documents,
// embed and index. Documents are processed concurrently up to a worker limit;
// chunks within one document stay in document order.
type IngestService struct {
	sources     []source.Source
	linker      *sitelink.Linker
	embedder    Embedder
	index       index.Index
	strategies  []domain.ChunkStrategy
	chunkParams chunking.Params
	concurrency int
	logger      zerolog.Logger
}

// NewIngestService creates an IngestService from the retrieval configuration.
// The configuration must already be validated.
func NewIngestService(
	sources []source.Source,
	embedder Embedder,
	idx index.Index,
	cfg *config.RetrievalConfig,
	logger zerolog.Logger,
) *IngestService {
	s := &IngestService{
		sources:     sources,
		linker:      sitelink.NewLinker(0),
		embedder:    embedder,
		index:       idx,
		strategies:  cfg.EnabledStrategies(),
		concurrency: cfg.Ingest.Concurrency,
		logger:      logger,
	}
	s.chunkParams = chunking.Params{
		ChunkSize:         cfg.Chunking.ChunkSize,
		Overlap:           cfg.Chunking.Overlap,
		SemanticThreshold: cfg.Chunking.SemanticThreshold,
	}
	if cfg.SemanticEnabled() {
		s.chunkParams.Similarity = embedder.EmbedBatch
	}
	if s.concurrency <= 0 {
		s.concurrency = 1
	}
	return s
}

// Run ingests every document from every source and returns the per-document
// report. Only a failure to enumerate a source aborts the run.
func (s *IngestService) Run(ctx context.Context) (*IngestReport, error) {
	docs, err := s.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.IngestDocuments(ctx, docs, docs)
}

// ScanAll enumerates the documents of every configured source.
func (s *IngestService) ScanAll(ctx context.Context) ([]*domain.Document, error) {
	var docs []*domain.Document
	for _, src := range s.sources {
		scanned, err := src.Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		docs = append(docs, scanned...)
	}
	return docs, nil
}

// IngestDocuments chunks, links, embeds and indexes the given documents.
// candidates is the full corpus used for site matching; it may be a superset
// of docs when only a changed subset is re-ingested.
func (s *IngestService) IngestDocuments(ctx context.Context, docs, candidates []*domain.Document) (*IngestReport, error) {
	links := s.linkPDFDocuments(docs, candidates)

	jobs := make(chan *domain.Document)
	reports := make(chan DocumentReport)

	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				reports <- s.ingestDocument(ctx, doc, links[doc.ID])
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, doc := range docs {
			select {
			case jobs <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(reports)
	}()

	report := &IngestReport{}
	for r := range reports {
		report.Documents = append(report.Documents, r)
		if r.Err != nil {
			report.Failed++
			s.logger.Warn().Str("document_id", r.DocumentID).Err(r.Err).Msg("document ingestion failed")
		} else {
			report.Succeeded++
			report.Chunks += r.Chunks
		}
	}
	if ctx.Err() != nil {
		return report, ctx.Err()
	}
	return report, nil
}

// linkPDFDocuments runs the site linker over every PDF-derived document
// before chunking starts, so chunks can be annotated without a second lookup.
func (s *IngestService) linkPDFDocuments(docs, candidates []*domain.Document) map[string]*domain.SiteLink {
	links := map[string]*domain.SiteLink{}
	for _, doc := range docs {
		if doc.SourceType != domain.SourceTypePDFMarkdown {
			continue
		}
		link, err := s.linker.Link(doc, candidates)
		if err != nil {
			s.logger.Warn().Str("document_id", doc.ID).Err(err).Msg("site linking failed")
			continue
		}
		if link != nil {
			links[doc.ID] = link
			s.logger.Debug().
				Str("document_id", doc.ID).
				Str("site_document_id", link.SiteDocumentID).
				Float64("confidence", link.MatchConfidence).
				Msg("linked pdf document to site page")
		}
	}
	return links
}

func (s *IngestService) ingestDocument(ctx context.Context, doc *domain.Document, link *domain.SiteLink) DocumentReport {
	report := DocumentReport{DocumentID: doc.ID, Path: doc.Path, Linked: link != nil}

	ctx, span := telemetry.StartSpan(ctx, "ingest.document", telemetry.SpanAttributes{
		DocumentID: doc.ID,
		Operation:  "ingest",
	})
	defer span.End()

	if err := domain.ValidateDocument(doc); err != nil {
		report.Err = err
		return report
	}

	var chunks []domain.Chunk
	for _, strategy := range s.strategies {
		produced, err := chunking.Split(ctx, doc, strategy, s.chunkParams)
		if err != nil {
			report.Err = fmt.Errorf("chunk with %s: %w", strategy, err)
			return report
		}
		chunks = append(chunks, produced...)
	}

	sitelink.Annotate(chunks, link)

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			report.Err = err
			return report
		}
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
	}

	// Re-ingestion replaces the document's chunk set wholesale.
	if err := s.index.DeleteDocument(ctx, doc.ID); err != nil {
		report.Err = err
		return report
	}
	if len(chunks) > 0 {
		if err := s.index.Upsert(ctx, chunks); err != nil {
			report.Err = err
			return report
		}
	}

	report.Chunks = len(chunks)
	return report
}
