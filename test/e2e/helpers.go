//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sitelens/sitelens/internal/api/handlers"
	"github.com/sitelens/sitelens/internal/config"
	"github.com/sitelens/sitelens/internal/index"
	"github.com/sitelens/sitelens/internal/server"
	"github.com/sitelens/sitelens/internal/service"
	"github.com/sitelens/sitelens/internal/source"
)

// hashEmbedder derives deterministic unit vectors from text so searches are
// repeatable without a live embedding provider.
type hashEmbedder struct{}

func (hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vs, err := hashEmbedder{}.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (hashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		h := fnv.New64a()
		h.Write([]byte(text))
		sum := h.Sum64()
		v := make([]float32, 8)
		for d := range v {
			v[d] = float32((sum>>(d*8))&0xff)/255.0 - 0.5
		}
		out[i] = v
	}
	return out, nil
}

// E2ETestEnv holds the in-process server and its backing corpus directory.
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	CorpusDir  string
	Server     *httptest.Server
	Index      index.Index
	HTTPClient *http.Client
}

// SetupE2EEnv wires the full service graph over a temp-dir corpus and a
// memory index and exposes it through the production router.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	corpusDir := t.TempDir()
	siteDir := filepath.Join(corpusDir, "site")
	pdfDir := filepath.Join(corpusDir, "pdf")
	for _, dir := range []string{siteDir, pdfDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	cfg := config.DefaultRetrievalConfig()
	cfg.Chunking.ChunkSize = 200
	cfg.Chunking.Overlap = 40
	cfg.Sources = []config.SourceConfig{
		{Dir: siteDir},
		{Dir: pdfDir, PDFDerived: true},
	}

	idx := index.NewMemory()
	embedder := hashEmbedder{}
	sources := []source.Source{
		source.NewFS(siteDir, "", false),
		source.NewFS(pdfDir, "", true),
	}

	ingest := service.NewIngestService(sources, embedder, idx, cfg, zerolog.Nop())
	search := service.NewRetrievalService(embedder, idx, cfg, zerolog.Nop())

	router := server.NewRouter(server.RouterConfig{
		SearchHandler: handlers.NewSearchHandler(search),
		IngestHandler: handlers.NewIngestHandler(ingest, idx),
		Logger:        zerolog.Nop(),
	})

	srv := httptest.NewServer(router)

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		CorpusDir:  corpusDir,
		Server:     srv,
		Index:      idx,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases the server.
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
}

// WriteDoc drops a file into the corpus directory.
func (e *E2ETestEnv) WriteDoc(relPath, content string) {
	e.T.Helper()
	full := filepath.Join(e.CorpusDir, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		e.T.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		e.T.Fatalf("write doc: %v", err)
	}
}

// APIResponse is a parsed success envelope.
type APIResponse struct {
	Data json.RawMessage `json:"data"`
}

func (e *E2ETestEnv) do(method, path string, body any) (*APIResponse, int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, e.Server.URL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(raw))
	}

	var parsed APIResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, resp.StatusCode, err
	}
	return &parsed, resp.StatusCode, nil
}

// Get performs a GET request against the server.
func (e *E2ETestEnv) Get(path string) (*APIResponse, int, error) {
	return e.do(http.MethodGet, path, nil)
}

// Post performs a POST request against the server.
func (e *E2ETestEnv) Post(path string, body any) (*APIResponse, int, error) {
	return e.do(http.MethodPost, path, body)
}

// Delete performs a DELETE request against the server.
func (e *E2ETestEnv) Delete(path string) (*APIResponse, int, error) {
	return e.do(http.MethodDelete, path, nil)
}
