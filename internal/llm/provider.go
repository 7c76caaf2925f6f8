// Package llm abstracts the chat-completion backend behind a minimal
// interface so the semantic engine never knows which vendor it is talking
// to. All three supported vendors expose OpenAI-compatible chat endpoints,
// so one client library covers them; the differences live entirely in base
// URL and credentials here.
package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal interface needed to call a chat model. It mirrors
// the CreateChatCompletion method so any OpenAI-compatible or local backend
// can be adapted, and so tests can stub the model entirely.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Provider identifiers accepted by New.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// OpenAI-compatible endpoints for the non-OpenAI vendors.
const (
	geminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta/openai"
	anthropicBaseURL = "https://api.anthropic.com/v1"
)

// New constructs a Client for the named provider. baseURL, when non-empty,
// overrides the provider default (local inference servers, proxies).
func New(provider, apiKey, baseURL string) (Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("provider %s: missing API key", provider)
	}
	cfg := openai.DefaultConfig(apiKey)
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOpenAI, "":
		// default endpoint
	case ProviderGemini:
		cfg.BaseURL = geminiBaseURL
	case ProviderAnthropic:
		cfg.BaseURL = anthropicBaseURL
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return openai.NewClientWithConfig(cfg), nil
}
