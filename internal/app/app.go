// Package app assembles the RAG pipeline from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"ragsearch/internal/chunker"
	"ragsearch/internal/config"
	"ragsearch/internal/domain"
	ollamaembed "ragsearch/internal/embedding/ollama"
	openaiembed "ragsearch/internal/embedding/openai"
	"ragsearch/internal/embedding/tfidf"
	ollamallm "ragsearch/internal/llm/ollama"
	openaillm "ragsearch/internal/llm/openai"
	"ragsearch/internal/loader"
	"ragsearch/internal/service"
	"ragsearch/internal/summarizer"
	"ragsearch/internal/vectorstore/faiss"
)

// NewRAGSearch builds every collaborator described by cfg and constructs the
// orchestrator, building or loading the index as cfg.Index.Mode dictates.
func NewRAGSearch(ctx context.Context, cfg *config.AppConfig) (*service.RAGSearch, error) {
	mode, err := service.ParseIndexMode(cfg.Index.Mode)
	if err != nil {
		return nil, err
	}
	llm, err := NewLLM(cfg.LLM)
	if err != nil {
		return nil, err
	}
	return service.NewRAGSearch(ctx, service.Options{
		PersistDir:     cfg.Index.PersistDir,
		EmbeddingModel: cfg.Embedder.Model,
		LLMModel:       cfg.LLM.Model,
		DataDir:        cfg.Index.DataDir,
		Mode:           mode,
	}, service.Dependencies{
		OpenStore: StoreOpener(cfg),
		Loader:    loader.NewDirectoryLoader(cfg.Index.Patterns...),
		LLM:       llm,
	})
}

// StoreOpener returns a service.StoreOpener producing faiss stores wired
// with the configured embedder, chunker and summarizer.
func StoreOpener(cfg *config.AppConfig) service.StoreOpener {
	return func(persistDir, embeddingModel string) (domain.VectorStore, error) {
		ec := cfg.Embedder
		ec.Model = embeddingModel
		emb, err := NewEmbedder(ec)
		if err != nil {
			return nil, err
		}
		ch, err := NewChunker(cfg.Chunker)
		if err != nil {
			return nil, err
		}
		var opts []faiss.Option
		sum, err := NewSummarizer(cfg.Summarizer)
		if err != nil {
			return nil, err
		}
		if sum != nil {
			opts = append(opts, faiss.WithSummarizer(sum, cfg.Summarizer.MaxSentences))
		}
		return faiss.New(persistDir, embeddingModel, emb, ch, opts...), nil
	}
}

// NewEmbedder selects the embedder implementation named by cfg.Type.
func NewEmbedder(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openaiembed.NewClient(openaiembed.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.Model,
			Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	case "ollama":
		if cfg.Ollama == nil {
			return nil, fmt.Errorf("ollama embedder config missing")
		}
		return ollamaembed.NewEmbedder(ollamaembed.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

// NewChunker selects the chunker implementation named by cfg.Type.
func NewChunker(cfg config.ChunkerConfig) (domain.Chunker, error) {
	switch cfg.Type {
	case "sentence", "":
		return chunker.NewSentenceChunker(cfg.SentencesPerChunk, cfg.OverlapSentences), nil
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Type)
	}
}

// NewSummarizer selects the corpus digest summarizer. "none" disables it.
func NewSummarizer(cfg config.SummarizerConfig) (domain.Summarizer, error) {
	switch cfg.Type {
	case "frequency", "":
		return summarizer.NewFrequencySummarizer(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Type)
	}
}

// NewLLM selects the language model implementation named by cfg.Type.
func NewLLM(cfg config.LLMConfig) (domain.Generator, error) {
	switch cfg.Type {
	case "openai", "":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai llm config missing")
		}
		return openaillm.New(openaillm.Config{
			BaseURL:     cfg.OpenAI.BaseURL,
			APIKeyEnv:   cfg.OpenAI.APIKeyEnv,
			Model:       cfg.Model,
			Timeout:     time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		}), nil
	case "ollama":
		if cfg.Ollama == nil {
			return nil, fmt.Errorf("ollama llm config missing")
		}
		return ollamallm.New(ollamallm.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown llm: %s", cfg.Type)
	}
}
