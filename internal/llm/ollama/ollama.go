// Package ollama provides a language model backed by a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"ragsearch/internal/domain"
)

// Ensure LLM implements the interface.
var _ domain.Generator = (*LLM)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "qwen2.5:1.5b-instruct"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Ollama language model.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLM completes prompts with /api/generate.
type LLM struct {
	client *api.Client
	model  string
}

// New creates a new Ollama language model client.
func New(cfg Config) (*LLM, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}
	return &LLM{
		client: api.NewClient(base, &http.Client{Timeout: cfg.Timeout}),
		model:  cfg.Model,
	}, nil
}

// ModelName returns the model identifier sent with each request.
func (l *LLM) ModelName() string { return l.model }

// Generate runs a single non-streaming completion.
func (l *LLM) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	var out strings.Builder
	err := l.client.Generate(ctx, &api.GenerateRequest{
		Model:  l.model,
		Prompt: prompt,
		Stream: &stream,
	}, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return out.String(), nil
}
