package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	embeddings "github.com/sanketexe/legal-chatbot/internal/embedding/openai"
	"github.com/sanketexe/legal-chatbot/internal/generator/gemini"
	"github.com/sanketexe/legal-chatbot/internal/generator/openai"
)

// Config represents the assistant configuration.
type Config struct {
	Server    ServerConfig
	CORS      CORSConfig
	RAG       RAGConfig
	Index     IndexConfig
	Embedding embeddings.Config
	OpenAI    openai.Config
	Gemini    gemini.Config
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"30"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// RAGConfig contains retrieval and generation pipeline settings.
// Timeouts are in seconds.
type RAGConfig struct {
	SimilarityThreshold float64 `env:"SIMILARITY_THRESHOLD"   envDefault:"0.3"`
	DefaultTopK         int     `env:"DEFAULT_TOP_K"          envDefault:"5"`
	MaxTopK             int     `env:"MAX_TOP_K"              envDefault:"50"`
	MaxContextLength    int     `env:"MAX_CONTEXT_LENGTH"     envDefault:"2000"`
	CacheCapacity       int     `env:"CACHE_CAPACITY"         envDefault:"100"`
	RetryLimit          int     `env:"GENERATION_RETRY_LIMIT" envDefault:"3"`
	ExcerptLength       int     `env:"EXCERPT_LENGTH"         envDefault:"400"`
	RetrievalTimeout    int     `env:"RETRIEVAL_TIMEOUT"      envDefault:"10"`
	GenerationTimeout   int     `env:"GENERATION_TIMEOUT"     envDefault:"15"`
	Provider            string  `env:"LLM_PROVIDER"           envDefault:"gemini"`
}

// IndexConfig contains vector index backend settings.
type IndexConfig struct {
	Backend        string `env:"VECTOR_BACKEND"   envDefault:"bolt"`
	BoltPath       string `env:"BOLT_PATH"        envDefault:"data/cases.db"`
	RedisAddr      string `env:"REDIS_ADDR"       envDefault:"localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB"         envDefault:"0"`
	RedisIndexName string `env:"REDIS_INDEX_NAME" envDefault:"idx:cases"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out

	Server    *ServerConfig
	CORS      *CORSConfig
	RAG       *RAGConfig
	Index     *IndexConfig
	Embedding *embeddings.Config
	OpenAI    *openai.Config
	Gemini    *gemini.Config
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		Out:       dig.Out{},
		Server:    &cfg.Server,
		CORS:      &cfg.CORS,
		RAG:       &cfg.RAG,
		Index:     &cfg.Index,
		Embedding: &cfg.Embedding,
		OpenAI:    &cfg.OpenAI,
		Gemini:    &cfg.Gemini,
	}
}
