package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sitelens/sitelens/internal/api/handlers"
	"github.com/sitelens/sitelens/internal/domain"
	"github.com/sitelens/sitelens/internal/service"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, query string) ([]domain.QueryResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QueryResult), args.Error(1)
}

type MockIngestRunner struct {
	mock.Mock
}

func (m *MockIngestRunner) Run(ctx context.Context) (*service.IngestReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestReport), args.Error(1)
}

type MockIndexAdmin struct {
	mock.Mock
}

func (m *MockIndexAdmin) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockIndexAdmin) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func setupRouter() (http.Handler, *MockSearchService, *MockIngestRunner, *MockIndexAdmin) {
	searchSvc := new(MockSearchService)
	ingestRunner := new(MockIngestRunner)
	indexAdmin := new(MockIndexAdmin)

	cfg := RouterConfig{
		SearchHandler: handlers.NewSearchHandler(searchSvc),
		IngestHandler: handlers.NewIngestHandler(ingestRunner, indexAdmin),
		Logger:        zerolog.Nop(),
	}

	router := NewRouter(cfg)
	return router, searchSvc, ingestRunner, indexAdmin
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_SearchGet(t *testing.T) {
	router, searchSvc, _, _ := setupRouter()

	searchSvc.On("Search", mock.Anything, "getting started").
		Return([]domain.QueryResult{{ChunkID: "c-1", Text: "getting started guide"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/search?q=getting+started", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	searchSvc.AssertExpectations(t)
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_IngestPost(t *testing.T) {
	router, _, ingestRunner, _ := setupRouter()

	ingestRunner.On("Run", mock.Anything).Return(&service.IngestReport{Succeeded: 1, Chunks: 4}, nil)

	req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	ingestRunner.AssertExpectations(t)
}

func TestRouter_Stats(t *testing.T) {
	router, _, _, indexAdmin := setupRouter()

	indexAdmin.On("Count", mock.Anything).Return(7, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["chunks"])
}

func TestRouter_ClearChunks(t *testing.T) {
	router, _, _, indexAdmin := setupRouter()

	indexAdmin.On("Clear", mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/chunks", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	indexAdmin.AssertExpectations(t)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
