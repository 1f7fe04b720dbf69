// Package generator selects and constructs the configured answer generator.
package generator

import (
	"context"
	"fmt"

	"github.com/sanketexe/legal-chatbot/internal/config"
	"github.com/sanketexe/legal-chatbot/internal/domain"
	"github.com/sanketexe/legal-chatbot/internal/generator/fallback"
	"github.com/sanketexe/legal-chatbot/internal/generator/gemini"
	"github.com/sanketexe/legal-chatbot/internal/generator/openai"
)

// Provider names accepted in LLM_PROVIDER.
const (
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderFallback = "fallback"
)

// New constructs the primary generator named by cfg.RAG.Provider. The
// selection happens once at startup and never changes mid-process.
func New(ctx context.Context, cfg *config.Config) (domain.Generator, error) {
	switch cfg.RAG.Provider {
	case ProviderOpenAI:
		gen, err := openai.NewGenerator(cfg.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai generator: %w", err)
		}
		return gen, nil

	case ProviderGemini:
		gen, err := gemini.NewGenerator(ctx, cfg.Gemini)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini generator: %w", err)
		}
		return gen, nil

	case ProviderFallback, "":
		return fallback.NewGenerator(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.RAG.Provider)
	}
}
