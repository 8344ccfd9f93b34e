package handlers

import (
	"context"
	"net/http"

	"github.com/sitelens/sitelens/internal/api"
	"github.com/sitelens/sitelens/internal/service"
)

type IngestRunner interface {
	Run(ctx context.Context) (*service.IngestReport, error)
}

type IndexAdmin interface {
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

type IngestHandler struct {
	ingest IngestRunner
	index  IndexAdmin
}

func NewIngestHandler(ingest IngestRunner, index IndexAdmin) *IngestHandler {
	return &IngestHandler{ingest: ingest, index: index}
}

type DocumentReportResponse struct {
	DocumentID string `json:"document_id"`
	Path       string `json:"path"`
	Chunks     int    `json:"chunks"`
	Linked     bool   `json:"linked"`
	Error      string `json:"error,omitempty"`
}

type IngestResponse struct {
	Documents []*DocumentReportResponse `json:"documents"`
	Succeeded int                       `json:"succeeded"`
	Failed    int                       `json:"failed"`
	Chunks    int                       `json:"chunks"`
}

type StatsResponse struct {
	Chunks int `json:"chunks"`
}

// Ingest runs a full ingestion pass over all configured sources. Per-document
// failures are reported in the body, not as an HTTP error.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	report, err := h.ingest.Run(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	documents := make([]*DocumentReportResponse, len(report.Documents))
	for i, dr := range report.Documents {
		resp := &DocumentReportResponse{
			DocumentID: dr.DocumentID,
			Path:       dr.Path,
			Chunks:     dr.Chunks,
			Linked:     dr.Linked,
		}
		if dr.Err != nil {
			resp.Error = dr.Err.Error()
		}
		documents[i] = resp
	}

	api.Success(w, http.StatusOK, IngestResponse{
		Documents: documents,
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		Chunks:    report.Chunks,
	})
}

func (h *IngestHandler) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.index.Count(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, StatsResponse{Chunks: count})
}

func (h *IngestHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.index.Clear(r.Context()); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "cleared"})
}
