package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sitelens/sitelens/internal/config"
	"github.com/sitelens/sitelens/internal/domain"
	"github.com/sitelens/sitelens/internal/index"
	"github.com/sitelens/sitelens/internal/service"
	"github.com/sitelens/sitelens/internal/source"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// mutableSource serves a document list that tests can swap between polls.
type mutableSource struct {
	mu   sync.Mutex
	docs []*domain.Document
}

func (s *mutableSource) Scan(ctx context.Context) ([]*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Document(nil), s.docs...), nil
}

func (s *mutableSource) set(docs []*domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = docs
}

// countingEmbedder returns a fixed vector and counts batch calls.
type countingEmbedder struct {
	batches atomic.Int64
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (e *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.batches.Add(1)
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func rescanFixture(t *testing.T) (*Rescanner, *mutableSource, *countingEmbedder, *index.Memory) {
	t.Helper()
	cfg := config.DefaultRetrievalConfig()
	cfg.Chunking.Strategies = []string{string(domain.StrategyRecursive)}

	src := &mutableSource{}
	embedder := &countingEmbedder{}
	idx := index.NewMemory()
	ingest := service.NewIngestService([]source.Source{src}, embedder, idx, cfg, zerolog.Nop())

	return NewRescanner(ingest, idx, zerolog.Nop()), src, embedder, idx
}

func TestRescanner_IngestsNewDocuments(t *testing.T) {
	r, src, _, idx := rescanFixture(t)
	src.set([]*domain.Document{
		domain.NewDocument("a.md", "a.md", "first document", domain.SourceTypeMarkdown, nil),
	})

	require.NoError(t, r.ProcessJobs(context.Background()))

	n, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Greater(t, n, 0)
}

func TestRescanner_SkipsUnchangedDocuments(t *testing.T) {
	r, src, embedder, _ := rescanFixture(t)
	src.set([]*domain.Document{
		domain.NewDocument("a.md", "a.md", "stable content", domain.SourceTypeMarkdown, nil),
	})

	require.NoError(t, r.ProcessJobs(context.Background()))
	calls := embedder.batches.Load()

	require.NoError(t, r.ProcessJobs(context.Background()))
	assert.Equal(t, calls, embedder.batches.Load())
}

func TestRescanner_ReingestsChangedDocuments(t *testing.T) {
	r, src, embedder, _ := rescanFixture(t)
	src.set([]*domain.Document{
		domain.NewDocument("a.md", "a.md", "original content", domain.SourceTypeMarkdown, nil),
	})
	require.NoError(t, r.ProcessJobs(context.Background()))
	calls := embedder.batches.Load()

	src.set([]*domain.Document{
		domain.NewDocument("a.md", "a.md", "edited content", domain.SourceTypeMarkdown, nil),
	})
	require.NoError(t, r.ProcessJobs(context.Background()))
	assert.Greater(t, embedder.batches.Load(), calls)
}

func TestRescanner_RemovesDeletedDocuments(t *testing.T) {
	r, src, _, idx := rescanFixture(t)
	src.set([]*domain.Document{
		domain.NewDocument("a.md", "a.md", "to be removed", domain.SourceTypeMarkdown, nil),
	})
	require.NoError(t, r.ProcessJobs(context.Background()))

	src.set(nil)
	require.NoError(t, r.ProcessJobs(context.Background()))

	n, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
