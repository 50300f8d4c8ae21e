// Package genai provides the language-model collaborator clients for PrepDeck.
//
// Two providers are supported: OpenAI and Gemini. The session layer only
// depends on ClientInterface and imposes no timeout of its own; calls are
// synchronous and block until the provider answers.
package genai

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Provider names accepted by NewFromEnv.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ClientInterface defines the minimal generation operation the session
// machine consumes.
type ClientInterface interface {
	// Generate produces a completion for the given system and user prompts.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// NewFromEnv builds a client for the provider named in PREPDECK_LLM_PROVIDER
// (default: openai). Key material comes from OPENAI_API_KEY or GEMINI_API_KEY.
func NewFromEnv(ctx context.Context) (ClientInterface, error) {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("PREPDECK_LLM_PROVIDER")))
	switch provider {
	case "", ProviderOpenAI:
		return NewOpenAIClient()
	case ProviderGemini:
		return NewGeminiClient(ctx)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
