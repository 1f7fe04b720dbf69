// Package openai provides the model-backed response generator using the
// official OpenAI SDK.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/sanketexe/legal-chatbot/internal/observability"
)

const (
	generationTemperature = 0.3
	generationMaxTokens   = 1500
)

const systemPrompt = `You are an expert Indian legal assistant with comprehensive knowledge of Indian law.
Use the provided case precedents to answer questions accurately.
Always cite specific cases and rulings.
Structure your responses clearly with headings.
If uncertain, acknowledge limitations.
Provide clear, actionable legal guidance.`

// Generator produces answers through the OpenAI chat completions API.
type Generator struct {
	client openai.Client
	model  string
}

// NewGenerator creates a new OpenAI generator.
func NewGenerator(config Config) (*Generator, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}
	if config.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(config.MaxRetries))
	}

	model := config.Model
	if model == "" {
		model = "gpt-4"
	}

	return &Generator{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Generate sends the query and precedent context and returns the model's
// text verbatim.
func (g *Generator) Generate(ctx context.Context, query, contextBlock string) (string, error) {
	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI API", observability.String("model", g.model))

	userPrompt := fmt.Sprintf(
		"Query: %s\n\n%s\n\nBased on the above precedents, provide a comprehensive legal answer with proper citations and structure.",
		query, contextBlock)

	//nolint:exhaustruct // OpenAI SDK struct has many optional fields
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(generationTemperature),
		MaxTokens:   openai.Int(generationMaxTokens),
	})
	if err != nil {
		logger.Error("OpenAI API call failed", observability.Error(err))
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	logger.Debug("OpenAI API call succeeded",
		observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)))

	return resp.Choices[0].Message.Content, nil
}

// Name returns the generator identifier.
func (g *Generator) Name() string {
	return "openai"
}
