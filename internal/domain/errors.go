package domain

import "errors"

// Sentinel errors visible to callers of the RAG service. Everything else
// resolves to a valid RagResult so the end user always receives an answer.
var (
	// ErrInvalidQuery rejects empty or whitespace-only queries before any
	// side effect.
	ErrInvalidQuery = errors.New("query cannot be empty")

	// ErrInvalidTopK rejects a non-positive result count.
	ErrInvalidTopK = errors.New("top_k must be a positive integer")

	// ErrRetrievalUnavailable wraps embedding-provider or vector-index
	// failures. Not retried: stale retrieval cannot substitute for a broken
	// index. Callers decide on the user-facing message.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
)
