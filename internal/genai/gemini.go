package genai

import (
	"context"
	"fmt"
	"os"

	gemini "google.golang.org/genai"
)

// DefaultGeminiModel is used when GEMINI_MODEL is not set.
const DefaultGeminiModel = "gemini-1.5-pro"

// GeminiClient wraps the Gemini content generation API.
type GeminiClient struct {
	client *gemini.Client
	model  string
}

// NewGeminiClient initializes a Gemini client from the GEMINI_API_KEY
// environment variable.
func NewGeminiClient(ctx context.Context) (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	client, err := gemini.NewClient(ctx, &gemini.ClientConfig{
		APIKey:  apiKey,
		Backend: gemini.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Generate produces a completion for the given system and user prompts.
// Gemini takes a single text part, so the prompts are concatenated.
func (c *GeminiClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	prompt := userPrompt
	if systemPrompt != "" {
		prompt = systemPrompt + "\n\n" + userPrompt
	}
	result, err := c.client.Models.GenerateContent(ctx, c.model, gemini.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("content generation failed: %w", err)
	}
	if result == nil {
		return "", fmt.Errorf("no response generated")
	}
	text, err := result.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract response text: %w", err)
	}
	if text == "" {
		return "", fmt.Errorf("empty response generated")
	}
	return text, nil
}
