// Package gemini provides the model-backed response generator using Google's
// Generative AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/sanketexe/legal-chatbot/internal/observability"
)

const generationTemperature = 0.3

const promptTemplate = `You are an expert Indian legal assistant with deep knowledge of Indian law and legal precedents.

Query: %s

%s

Instructions:
1. Analyze the provided case precedents carefully
2. Provide a comprehensive legal answer citing specific cases by name
3. Include relevant legal principles and precedents
4. Mention applicable laws and sections if relevant
5. Be clear, accurate, and professional
6. Structure your response with clear headings
7. If precedents are insufficient, acknowledge limitations

Provide your expert legal analysis with proper citations:`

// Generator produces answers through the Gemini generateContent API.
type Generator struct {
	model *genai.GenerativeModel
	name  string
}

// NewGenerator creates a new Gemini generator. The client lives for the
// process lifetime; Close is only needed on shutdown.
func NewGenerator(ctx context.Context, config Config) (*Generator, error) {
	if config.APIKey == "" {
		return nil, errors.New("Google API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	modelName := config.Model
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(generationTemperature)

	return &Generator{model: model, name: "gemini"}, nil
}

// Generate sends the query and precedent context as a single prompt and
// returns the concatenated text parts of the first candidate.
func (g *Generator) Generate(ctx context.Context, query, contextBlock string) (string, error) {
	logger := observability.FromContext(ctx)
	logger.Debug("calling Gemini API")

	prompt := fmt.Sprintf(promptTemplate, query, contextBlock)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		logger.Error("Gemini API call failed", observability.Error(err))
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no candidates returned")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("empty response from model")
	}

	return b.String(), nil
}

// Name returns the generator identifier.
func (g *Generator) Name() string {
	return g.name
}
