package genai

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// fakeChatService returns a fixed completion or error.
type fakeChatService struct {
	content    string
	err        error
	lastParams openai.ChatCompletionNewParams
}

func (f *fakeChatService) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func TestOpenAIGenerate(t *testing.T) {
	fake := &fakeChatService{content: "Score: 8/10"}
	c := &OpenAIClient{chat: fake, model: openai.ChatModelGPT4oMini}

	got, err := c.Generate(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "Score: 8/10" {
		t.Errorf("unexpected completion %q", got)
	}
	if len(fake.lastParams.Messages) != 2 {
		t.Errorf("expected system and user messages, got %d", len(fake.lastParams.Messages))
	}
}

func TestOpenAIGenerateError(t *testing.T) {
	fake := &fakeChatService{err: errors.New("rate limited")}
	c := &OpenAIClient{chat: fake, model: openai.ChatModelGPT4oMini}

	if _, err := c.Generate(context.Background(), "s", "u"); err == nil {
		t.Error("expected error from failed completion")
	}
}

// A completion with zero choices is an error, not an empty string.
func TestOpenAIGenerateNoChoices(t *testing.T) {
	c := &OpenAIClient{chat: emptyChoicesService{}, model: openai.ChatModelGPT4oMini}
	if _, err := c.Generate(context.Background(), "s", "u"); err == nil {
		t.Error("expected error for empty choices")
	}
}

type emptyChoicesService struct{}

func (emptyChoicesService) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	return &openai.ChatCompletion{}, nil
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewOpenAIClient(); err == nil {
		t.Error("expected error without OPENAI_API_KEY")
	}
}

func TestNewFromEnvUnknownProvider(t *testing.T) {
	t.Setenv("PREPDECK_LLM_PROVIDER", "watson")
	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	t.Setenv("PREPDECK_LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Error("expected error without GEMINI_API_KEY")
	}
}
