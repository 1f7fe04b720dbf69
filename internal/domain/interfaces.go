package domain

import "context"

// SimilarityMetric names the unit a vector index reports hits in.
type SimilarityMetric string

const (
	// MetricCosineDistance: 0 = identical, 2 = opposite.
	MetricCosineDistance SimilarityMetric = "cosine_distance"

	// MetricCosineScore: 1 = identical, 0 = unrelated.
	MetricCosineScore SimilarityMetric = "cosine_score"
)

// VectorIndex stores (vector, text, metadata) triples and answers
// nearest-neighbor queries. Implementations exist for a local persistent
// store and a hosted store; both honor the same contract.
type VectorIndex interface {
	// Upsert persists a batch of items. Idempotent per ID (overwrite).
	// Malformed items are rejected individually; the batch continues.
	Upsert(ctx context.Context, items []IndexItem) (*UpsertReport, error)

	// Query returns up to topK nearest neighbors, best first, optionally
	// restricted by a metadata filter. topK must be positive.
	Query(ctx context.Context, vector []float64, topK int, filter map[string]string) ([]SearchHit, error)

	// Count returns the total number of indexed vectors (diagnostics).
	Count(ctx context.Context) (int, error)

	// Metric reports the unit of SearchHit.Value.
	Metric() SimilarityMetric
}

// EmbeddingGenerator creates vector embeddings from text.
type EmbeddingGenerator interface {
	// Generate creates a vector embedding from text.
	Generate(ctx context.Context, text string) ([]float64, error)

	// Name returns the generator identifier.
	Name() string

	// Dimension returns the vector dimension.
	Dimension() int
}

// Generator produces prose for a query grounded on formatted precedent
// context. Implementations are selected once at construction and never
// swapped mid-process.
type Generator interface {
	Generate(ctx context.Context, query, context string) (string, error)

	// Name returns the generator identifier.
	Name() string
}

// Retriever turns a free-text query into ranked relevant cases.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]RelevantCase, error)
}

// QueryCache holds previously retrieved case lists keyed by
// (normalized query, topK). Bounded; the oldest entry is evicted at capacity.
type QueryCache interface {
	Get(query string, topK int) ([]RelevantCase, bool)
	Put(query string, topK int, cases []RelevantCase)
	Len() int
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}
