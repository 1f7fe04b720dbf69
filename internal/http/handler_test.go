package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanketexe/legal-chatbot/internal/cache"
	"github.com/sanketexe/legal-chatbot/internal/config"
	"github.com/sanketexe/legal-chatbot/internal/domain"
	"github.com/sanketexe/legal-chatbot/internal/generator/fallback"
	httpapi "github.com/sanketexe/legal-chatbot/internal/http"
)

// stubRetriever is a stub implementation of Retriever for testing.
type stubRetriever struct {
	cases    []domain.RelevantCase
	err      error
	lastTopK int
}

func (s *stubRetriever) Retrieve(_ context.Context, query string, topK int) ([]domain.RelevantCase, error) {
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}
	if topK <= 0 {
		return nil, domain.ErrInvalidTopK
	}
	s.lastTopK = topK
	if s.err != nil {
		return nil, s.err
	}
	return s.cases, nil
}

// stubGenerator is a stub implementation of Generator for testing.
type stubGenerator struct {
	text string
}

func (s *stubGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return s.text, nil
}

func (s *stubGenerator) Name() string { return "mock" }

// stubIndex only serves Count for the health endpoint.
type stubIndex struct {
	count    int
	countErr error
}

func (s *stubIndex) Upsert(_ context.Context, _ []domain.IndexItem) (*domain.UpsertReport, error) {
	return &domain.UpsertReport{}, nil
}

func (s *stubIndex) Query(_ context.Context, _ []float64, _ int, _ map[string]string) ([]domain.SearchHit, error) {
	return nil, nil
}

func (s *stubIndex) Count(_ context.Context) (int, error) {
	return s.count, s.countErr
}

func (s *stubIndex) Metric() domain.SimilarityMetric {
	return domain.MetricCosineScore
}

func newTestHandler(retriever *stubRetriever, index *stubIndex) *httpapi.Handler {
	generator := &stubGenerator{text: "The precedents indicate liability."}
	rag := domain.NewRAGService(
		retriever,
		domain.NewContextFormatter(2000),
		generator,
		fallback.NewGenerator(),
		cache.NewQueryCache(10),
		nil,
		domain.RAGOptions{},
	)

	return httpapi.NewHandler(
		rag,
		retriever,
		index,
		generator,
		&config.RAGConfig{DefaultTopK: 5, MaxTopK: 50},
		&config.IndexConfig{Backend: "bolt"},
	)
}

func postJSON(t *testing.T, handle nethttp.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(nethttp.MethodPost, path, bytes.NewReader(payload))
	w := httptest.NewRecorder()
	handle(w, req)
	return w
}

func TestHandleQuery(t *testing.T) {
	sources := []domain.RelevantCase{{
		ID:        "case-1",
		Title:     "Sharma vs Verma",
		Relevance: 0.91,
		Excerpt:   "The appellant sought damages.",
	}}

	t.Run("should answer a valid query", func(t *testing.T) {
		retriever := &stubRetriever{cases: sources}
		handler := newTestHandler(retriever, &stubIndex{count: 1})

		w := postJSON(t, handler.HandleQuery, "/v1/query", map[string]any{
			"query": "breach of contract damages",
			"top_k": 3,
		})

		require.Equal(t, nethttp.StatusOK, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))
		require.Equal(t, 3, retriever.lastTopK)

		var result domain.RagResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		require.Equal(t, "The precedents indicate liability.", result.Answer)
		require.Equal(t, "breach of contract damages", result.Query)
		require.Len(t, result.Sources, 1)
		require.Equal(t, "mock", result.Metrics.LLMUsed)
	})

	t.Run("should apply the default topK when omitted", func(t *testing.T) {
		retriever := &stubRetriever{cases: sources}
		handler := newTestHandler(retriever, &stubIndex{})

		w := postJSON(t, handler.HandleQuery, "/v1/query", map[string]any{
			"query": "breach of contract",
		})

		require.Equal(t, nethttp.StatusOK, w.Code)
		require.Equal(t, 5, retriever.lastTopK)
	})

	t.Run("should cap an oversized topK", func(t *testing.T) {
		retriever := &stubRetriever{cases: sources}
		handler := newTestHandler(retriever, &stubIndex{})

		w := postJSON(t, handler.HandleQuery, "/v1/query", map[string]any{
			"query": "breach of contract",
			"top_k": 1000000,
		})

		require.Equal(t, nethttp.StatusOK, w.Code)
		require.Equal(t, 50, retriever.lastTopK)
	})

	t.Run("should reject a blank query", func(t *testing.T) {
		handler := newTestHandler(&stubRetriever{}, &stubIndex{})

		w := postJSON(t, handler.HandleQuery, "/v1/query", map[string]any{"query": "  "})

		require.Equal(t, nethttp.StatusBadRequest, w.Code)
	})

	t.Run("should reject an explicit non-positive topK", func(t *testing.T) {
		handler := newTestHandler(&stubRetriever{}, &stubIndex{})

		w := postJSON(t, handler.HandleQuery, "/v1/query", map[string]any{
			"query": "breach of contract",
			"top_k": 0,
		})

		require.Equal(t, nethttp.StatusBadRequest, w.Code)
	})

	t.Run("should reject malformed JSON", func(t *testing.T) {
		handler := newTestHandler(&stubRetriever{}, &stubIndex{})

		req := httptest.NewRequest(nethttp.MethodPost, "/v1/query", bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()
		handler.HandleQuery(w, req)

		require.Equal(t, nethttp.StatusBadRequest, w.Code)
	})

	t.Run("should reject non-POST methods", func(t *testing.T) {
		handler := newTestHandler(&stubRetriever{}, &stubIndex{})

		req := httptest.NewRequest(nethttp.MethodGet, "/v1/query", nil)
		w := httptest.NewRecorder()
		handler.HandleQuery(w, req)

		require.Equal(t, nethttp.StatusMethodNotAllowed, w.Code)
	})

	t.Run("should map retrieval unavailability to 503", func(t *testing.T) {
		retriever := &stubRetriever{err: domain.ErrRetrievalUnavailable}
		handler := newTestHandler(retriever, &stubIndex{})

		w := postJSON(t, handler.HandleQuery, "/v1/query", map[string]any{
			"query": "breach of contract",
		})

		require.Equal(t, nethttp.StatusServiceUnavailable, w.Code)
	})
}

func TestHandleSearch(t *testing.T) {
	t.Run("should return raw cases without generation", func(t *testing.T) {
		retriever := &stubRetriever{cases: []domain.RelevantCase{
			{ID: "case-1", Title: "Sharma vs Verma", Relevance: 0.91},
			{ID: "case-2", Title: "Rao vs State", Relevance: 0.55},
		}}
		handler := newTestHandler(retriever, &stubIndex{})

		w := postJSON(t, handler.HandleSearch, "/v1/cases/search", map[string]any{
			"query": "breach of contract",
			"top_k": 2,
		})

		require.Equal(t, nethttp.StatusOK, w.Code)

		var resp struct {
			Query string                `json:"query"`
			Cases []domain.RelevantCase `json:"cases"`
			Count int                   `json:"count"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Equal(t, "breach of contract", resp.Query)
		require.Equal(t, 2, resp.Count)
		require.Equal(t, "Sharma vs Verma", resp.Cases[0].Title)
	})

	t.Run("should cap an oversized topK", func(t *testing.T) {
		retriever := &stubRetriever{cases: []domain.RelevantCase{}}
		handler := newTestHandler(retriever, &stubIndex{})

		w := postJSON(t, handler.HandleSearch, "/v1/cases/search", map[string]any{
			"query": "breach of contract",
			"top_k": 9999,
		})

		require.Equal(t, nethttp.StatusOK, w.Code)
		require.Equal(t, 50, retriever.lastTopK)
	})

	t.Run("should propagate validation failures", func(t *testing.T) {
		handler := newTestHandler(&stubRetriever{}, &stubIndex{})

		w := postJSON(t, handler.HandleSearch, "/v1/cases/search", map[string]any{"query": ""})

		require.Equal(t, nethttp.StatusBadRequest, w.Code)
	})
}

func TestHandleHealth(t *testing.T) {
	t.Run("should report backend, generator and corpus size", func(t *testing.T) {
		handler := newTestHandler(&stubRetriever{}, &stubIndex{count: 42})

		req := httptest.NewRequest(nethttp.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		handler.HandleHealth(w, req)

		require.Equal(t, nethttp.StatusOK, w.Code)

		var status map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
		require.Equal(t, "healthy", status["status"])
		require.Equal(t, "bolt", status["backend"])
		require.Equal(t, "mock", status["generator"])
		require.InDelta(t, 42, status["cases_indexed"], 0.001)
	})

	t.Run("should degrade when the index is unreachable", func(t *testing.T) {
		handler := newTestHandler(&stubRetriever{}, &stubIndex{countErr: errors.New("down")})

		req := httptest.NewRequest(nethttp.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		handler.HandleHealth(w, req)

		require.Equal(t, nethttp.StatusOK, w.Code)

		var status map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
		require.Equal(t, "degraded", status["status"])
	})
}
