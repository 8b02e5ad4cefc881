// Package openai provides a language model backed by any OpenAI-compatible
// chat completions endpoint (OpenAI, vLLM, TGI, LM Studio).
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"ragsearch/internal/domain"
)

// Ensure LLM implements the interface.
var _ domain.Generator = (*LLM)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8000/v1"
	DefaultModel   = "Qwen/Qwen2.5-1.5B-Instruct"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI-compatible language model.
type Config struct {
	// BaseURL is the API base URL including the /v1 suffix.
	BaseURL string

	// APIKeyEnv names the environment variable holding the API key. Local
	// servers usually accept an empty key.
	APIKeyEnv string

	// Model is the served model identifier.
	Model string

	// Timeout is the request timeout.
	Timeout time.Duration

	// MaxTokens caps the completion length; 0 leaves it to the server.
	MaxTokens int

	// Temperature controls randomness; 0 leaves it to the server.
	Temperature float32
}

// LLM completes prompts with a single-message chat completion.
type LLM struct {
	client      *goopenai.Client
	model       string
	maxTokens   int
	temperature float32
}

// New creates a new OpenAI-compatible language model client.
func New(cfg Config) *LLM {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	key := ""
	if cfg.APIKeyEnv != "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}
	oc := goopenai.DefaultConfig(key)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &LLM{
		client:      goopenai.NewClientWithConfig(oc),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// ModelName returns the model identifier sent with each request.
func (l *LLM) ModelName() string { return l.model }

// Generate sends prompt as one user message and returns the first choice.
func (l *LLM) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := l.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: l.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   l.maxTokens,
		Temperature: l.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
