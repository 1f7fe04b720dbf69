package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/sanketexe/legal-chatbot/internal/cache"
	"github.com/sanketexe/legal-chatbot/internal/config"
	"github.com/sanketexe/legal-chatbot/internal/domain"
	embeddings "github.com/sanketexe/legal-chatbot/internal/embedding/openai"
	"github.com/sanketexe/legal-chatbot/internal/generator"
	"github.com/sanketexe/legal-chatbot/internal/generator/fallback"
	"github.com/sanketexe/legal-chatbot/internal/http"
	"github.com/sanketexe/legal-chatbot/internal/http/middleware"
	"github.com/sanketexe/legal-chatbot/internal/index"
	"github.com/sanketexe/legal-chatbot/internal/observability"
)

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *http.Server) {
		if err := server.Start(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability. Invoked eagerly: nothing else consumes *zap.Logger, and
	// the global logger must be set before the first request.
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Invoke(func(*zap.Logger) {}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Embedding generator
	if err := container.Provide(func(cfg *embeddings.Config) (domain.EmbeddingGenerator, error) {
		return embeddings.NewGenerator(*cfg)
	}); err != nil {
		log.Fatalf("Failed to provide embedding generator: %v", err)
	}

	// Vector index, dimensioned to match the embedding model
	if err := container.Provide(func(
		cfg *config.IndexConfig,
		emb domain.EmbeddingGenerator,
	) (domain.VectorIndex, error) {
		return index.New(cfg, emb.Dimension())
	}); err != nil {
		log.Fatalf("Failed to provide vector index: %v", err)
	}

	// Answer generator, selected once at startup
	if err := container.Provide(func(cfg *config.Config) (domain.Generator, error) {
		return generator.New(context.Background(), cfg)
	}); err != nil {
		log.Fatalf("Failed to provide answer generator: %v", err)
	}

	// Retriever
	if err := container.Provide(func(
		emb domain.EmbeddingGenerator,
		idx domain.VectorIndex,
		cfg *config.RAGConfig,
	) domain.Retriever {
		return domain.NewCaseRetriever(emb, idx, cfg.SimilarityThreshold, cfg.ExcerptLength)
	}); err != nil {
		log.Fatalf("Failed to provide retriever: %v", err)
	}

	// Orchestrator
	if err := container.Provide(func(
		retriever domain.Retriever,
		gen domain.Generator,
		cfg *config.RAGConfig,
	) *domain.RAGService {
		return domain.NewRAGService(
			retriever,
			domain.NewContextFormatter(cfg.MaxContextLength),
			gen,
			fallback.NewGenerator(),
			cache.NewQueryCache(cfg.CacheCapacity),
			observability.NewEventBus(),
			domain.RAGOptions{
				RetryLimit:        cfg.RetryLimit,
				RetrievalTimeout:  time.Duration(cfg.RetrievalTimeout) * time.Second,
				GenerationTimeout: time.Duration(cfg.GenerationTimeout) * time.Second,
			},
		)
	}); err != nil {
		log.Fatalf("Failed to provide RAG service: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}
