package genai

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// chatService defines the minimal interface for chat completions, so tests
// can substitute a fake.
type chatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAIClient wraps the OpenAI chat completion service.
type OpenAIClient struct {
	chat  chatService
	model openai.ChatModel
}

// NewOpenAIClient initializes an OpenAI client from the OPENAI_API_KEY
// environment variable.
func NewOpenAIClient() (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	model := openai.ChatModel(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &OpenAIClient{chat: &cli.Chat.Completions, model: model}, nil
}

// Generate produces a completion for the given system and user prompts.
func (c *OpenAIClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
