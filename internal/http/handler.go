package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/sanketexe/legal-chatbot/internal/config"
	"github.com/sanketexe/legal-chatbot/internal/domain"
	"github.com/sanketexe/legal-chatbot/internal/observability"
)

// Handler handles HTTP requests.
type Handler struct {
	rag         *domain.RAGService
	retriever   domain.Retriever
	index       domain.VectorIndex
	generator   domain.Generator
	backend     string
	defaultTopK int
	maxTopK     int
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(
	rag *domain.RAGService,
	retriever domain.Retriever,
	index domain.VectorIndex,
	generator domain.Generator,
	ragCfg *config.RAGConfig,
	indexCfg *config.IndexConfig,
) *Handler {
	return &Handler{
		rag:         rag,
		retriever:   retriever,
		index:       index,
		generator:   generator,
		backend:     indexCfg.Backend,
		defaultTopK: ragCfg.DefaultTopK,
		maxTopK:     ragCfg.MaxTopK,
	}
}

// resolveTopK applies the configured default when the field is omitted and
// caps client-supplied values to bound query latency. Non-positive explicit
// values pass through so the domain layer rejects them.
func (h *Handler) resolveTopK(requested *int) int {
	if requested == nil {
		return h.defaultTopK
	}
	topK := *requested
	if h.maxTopK > 0 && topK > h.maxTopK {
		return h.maxTopK
	}
	return topK
}

// queryRequest is the body for both query and search endpoints. TopK is a
// pointer so an omitted field can take the configured default while an
// explicit zero is still rejected.
type queryRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

type searchResponse struct {
	Query string                `json:"query"`
	Cases []domain.RelevantCase `json:"cases"`
	Count int                   `json:"count"`
}

// HandleQuery processes legal question requests through the full pipeline.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Early validation.
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	topK := h.resolveTopK(req.TopK)

	// Inject backend and model into context for downstream logging.
	ctx = observability.WithBackend(ctx, h.backend)
	if h.generator != nil {
		ctx = observability.WithModel(ctx, h.generator.Name())
	}

	logger := observability.FromContext(ctx)
	logger.Info("query request received",
		zap.Int("top_k", topK),
		zap.Int("query_length", len(req.Query)),
	)

	result, err := h.rag.Answer(ctx, req.Query, topK)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	logger.Info("query answered",
		zap.String("llm_used", result.Metrics.LLMUsed),
		zap.Bool("cache_hit", result.Metrics.CacheHit),
		zap.Int("sources", len(result.Sources)),
	)

	h.writeJSON(ctx, w, http.StatusOK, result)
}

// HandleSearch runs retrieval only, without generation. Useful for clients
// that want raw precedents rather than a composed answer.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	topK := h.resolveTopK(req.TopK)

	ctx = observability.WithBackend(ctx, h.backend)

	cases, err := h.retriever.Retrieve(ctx, req.Query, topK)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, searchResponse{
		Query: req.Query,
		Cases: cases,
		Count: len(cases),
	})
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]interface{}{
		"status":  "healthy",
		"backend": h.backend,
	}
	if h.generator != nil {
		status["generator"] = h.generator.Name()
	}

	count, err := h.index.Count(ctx)
	if err != nil {
		status["status"] = "degraded"
	} else {
		status["cases_indexed"] = count
	}

	h.writeJSON(ctx, w, http.StatusOK, status)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := observability.FromContext(ctx)

	switch {
	case errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, domain.ErrInvalidTopK):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrRetrievalUnavailable):
		logger.Error("retrieval unavailable", zap.Error(err))
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		logger.Error("request failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Already written status, can't change it, just log.
		observability.FromContext(ctx).Error("failed to encode response", zap.Error(err))
	}
}
