package domain

import (
	"context"
	"strings"
	"time"

	"github.com/sanketexe/legal-chatbot/internal/observability"
)

// GuidanceAnswer is returned when retrieval succeeds but produces no
// qualifying precedents. Generation is skipped in that branch: there is
// nothing to ground it on.
const GuidanceAnswer = "I couldn't find relevant legal precedents for your query. " +
	"Please try rephrasing or provide more context."

// LLMUsed values reported in ResultMetrics.
const (
	llmUsedFallback = "fallback"
	llmUsedNone     = "none"
)

// RAGService orchestrates the retrieval-augmented answer pipeline:
// Retrieve -> Format -> Generate, with query caching and a bounded retry
// loop around generation. Safe for concurrent callers.
type RAGService struct {
	retriever  Retriever
	formatter  *ContextFormatter
	generator  Generator
	fallback   Generator
	cache      QueryCache
	events     EventPublisher
	retryLimit int

	retrievalTimeout  time.Duration
	generationTimeout time.Duration
}

// RAGOptions tunes the orchestrator. Zero values fall back to the documented
// defaults.
type RAGOptions struct {
	RetryLimit        int
	RetrievalTimeout  time.Duration
	GenerationTimeout time.Duration
}

const (
	defaultRetryLimit        = 3
	defaultRetrievalTimeout  = 10 * time.Second
	defaultGenerationTimeout = 15 * time.Second
)

// NewRAGService creates the orchestrator (DI constructor). The fallback
// generator must be deterministic and must never fail; generator may be nil,
// in which case every answer takes the fallback path.
func NewRAGService(
	retriever Retriever,
	formatter *ContextFormatter,
	generator Generator,
	fallback Generator,
	cache QueryCache,
	events EventPublisher,
	opts RAGOptions,
) *RAGService {
	if opts.RetryLimit <= 0 {
		opts.RetryLimit = defaultRetryLimit
	}
	if opts.RetrievalTimeout <= 0 {
		opts.RetrievalTimeout = defaultRetrievalTimeout
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = defaultGenerationTimeout
	}
	return &RAGService{
		retriever:         retriever,
		formatter:         formatter,
		generator:         generator,
		fallback:          fallback,
		cache:             cache,
		events:            events,
		retryLimit:        opts.RetryLimit,
		retrievalTimeout:  opts.RetrievalTimeout,
		generationTimeout: opts.GenerationTimeout,
	}
}

// Answer runs the full pipeline for one legal question. Only ErrInvalidQuery,
// ErrInvalidTopK and ErrRetrievalUnavailable are surfaced as errors; model
// failures degrade to the fallback template inside a successful result.
func (s *RAGService) Answer(ctx context.Context, query string, topK int) (*RagResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrInvalidQuery
	}
	if topK <= 0 {
		return nil, ErrInvalidTopK
	}

	logger := observability.FromContext(ctx)
	start := time.Now()

	var metrics ResultMetrics

	sources, cached := s.cachedSources(query, topK)
	metrics.CacheHit = cached

	if !cached {
		retrievalStart := time.Now()
		retrieved, err := s.retrieve(ctx, query, topK)
		metrics.RetrievalTime = time.Since(retrievalStart)
		if err != nil {
			// Not retried and not cached: a broken index must surface.
			return nil, err
		}
		sources = retrieved
		if len(sources) > 0 {
			s.cache.Put(normalizeQuery(query), topK, sources)
		}
	}
	metrics.CasesRetrieved = len(sources)

	if len(sources) == 0 {
		s.publish(ctx, "retrieval.empty", map[string]interface{}{"query": query})
		logger.Info("no qualifying precedents, returning guidance answer")

		metrics.LLMUsed = llmUsedNone
		metrics.TotalTime = time.Since(start)
		return &RagResult{
			Answer:    GuidanceAnswer,
			Sources:   []RelevantCase{},
			Query:     query,
			Timestamp: time.Now(),
			Metrics:   metrics,
		}, nil
	}

	contextBlock := s.formatter.Format(sources)
	metrics.ContextLength = len(contextBlock)

	generationStart := time.Now()
	answer, llmUsed := s.generate(ctx, query, contextBlock)
	metrics.GenerationTime = time.Since(generationStart)
	metrics.LLMUsed = llmUsed

	metrics.TotalTime = time.Since(start)
	logger.Info("answer assembled",
		observability.String("llm_used", llmUsed),
		observability.Bool("cache_hit", metrics.CacheHit),
		observability.Int("sources", len(sources)),
		observability.Duration("total_time", metrics.TotalTime))

	return &RagResult{
		Answer:    answer,
		Sources:   sources,
		Query:     query,
		Timestamp: time.Now(),
		Metrics:   metrics,
	}, nil
}

func (s *RAGService) cachedSources(query string, topK int) ([]RelevantCase, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(normalizeQuery(query), topK)
}

func (s *RAGService) retrieve(ctx context.Context, query string, topK int) ([]RelevantCase, error) {
	ctx, cancel := context.WithTimeout(ctx, s.retrievalTimeout)
	defer cancel()
	return s.retriever.Retrieve(ctx, query, topK)
}

// generate runs the bounded retry loop around the configured generator and
// degrades to the fallback template after exhausting it. Model-provider
// errors never leave this method.
func (s *RAGService) generate(ctx context.Context, query, contextBlock string) (answer, llmUsed string) {
	logger := observability.FromContext(ctx)

	if s.generator != nil {
		for attempt := 1; attempt <= s.retryLimit; attempt++ {
			text, err := s.generateOnce(ctx, query, contextBlock)
			if err == nil && strings.TrimSpace(text) != "" {
				return text, s.generator.Name()
			}
			if err != nil {
				logger.Warn("generation attempt failed",
					observability.Int("attempt", attempt),
					observability.Int("retry_limit", s.retryLimit),
					observability.Error(err))
			} else {
				logger.Warn("generation attempt returned empty output",
					observability.Int("attempt", attempt))
			}
		}
		s.publish(ctx, "generation.degraded", map[string]interface{}{
			"generator": s.generator.Name(),
			"attempts":  s.retryLimit,
		})
	}

	text, err := s.fallback.Generate(ctx, query, contextBlock)
	if err != nil {
		// The fallback contract forbids errors; guard anyway so the caller
		// always receives an answer.
		logger.Error("fallback generator failed", observability.Error(err))
		return GuidanceAnswer, llmUsedFallback
	}
	return text, llmUsedFallback
}

func (s *RAGService) generateOnce(ctx context.Context, query, contextBlock string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.generationTimeout)
	defer cancel()
	return s.generator.Generate(ctx, query, contextBlock)
}

func (s *RAGService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, eventType, data)
}

// normalizeQuery lowercases and collapses whitespace so trivially different
// spellings of the same question share a cache entry.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}
