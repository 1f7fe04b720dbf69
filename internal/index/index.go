// Package index selects and constructs the configured vector index backend.
package index

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sanketexe/legal-chatbot/internal/config"
	"github.com/sanketexe/legal-chatbot/internal/domain"
	"github.com/sanketexe/legal-chatbot/internal/index/bolt"
	"github.com/sanketexe/legal-chatbot/internal/index/redisearch"
)

// Backend names accepted in VECTOR_BACKEND.
const (
	BackendBolt  = "bolt"
	BackendRedis = "redis"
)

// New constructs the vector index named by cfg.Backend. The dimension must
// match the embedding generator feeding the index.
func New(cfg *config.IndexConfig, dimension int) (domain.VectorIndex, error) {
	switch cfg.Backend {
	case BackendBolt:
		idx, err := bolt.NewIndex(cfg.BoltPath, dimension)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt index: %w", err)
		}
		return idx, nil

	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		idx, err := redisearch.NewIndex(client, cfg.RedisIndexName, dimension)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis index: %w", err)
		}
		return idx, nil

	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.Backend)
	}
}
