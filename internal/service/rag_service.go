package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"ragsearch/internal/domain"
	"ragsearch/internal/vectorstore/faiss"
)

// Defaults for Options fields left empty.
const (
	DefaultPersistDir     = "faiss_store"
	DefaultEmbeddingModel = "all-MiniLM-L6-v2"
	DefaultLLMModel       = "Qwen/Qwen2.5-1.5B-Instruct"
	DefaultDataDir        = "data"
	DefaultTopK           = 5
)

// NoResultsMessage is returned when retrieval yields no usable text.
const NoResultsMessage = "No relevant documents found."

// IndexMode states how construction obtains the index.
type IndexMode string

const (
	// IndexModeAuto builds when either artifact is missing and loads otherwise.
	IndexModeAuto IndexMode = "auto"
	// IndexModeLoad requires both artifacts to exist.
	IndexModeLoad IndexMode = "load"
	// IndexModeBuild always rebuilds from the corpus.
	IndexModeBuild IndexMode = "build"
)

// ParseIndexMode converts a configuration value into an IndexMode. An empty
// string selects IndexModeAuto.
func ParseIndexMode(s string) (IndexMode, error) {
	switch m := IndexMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return IndexModeAuto, nil
	case IndexModeAuto, IndexModeLoad, IndexModeBuild:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown index mode %q", domain.ErrInvalidInput, s)
	}
}

// Options are the construction parameters of RAGSearch.
type Options struct {
	PersistDir     string
	EmbeddingModel string
	LLMModel       string
	DataDir        string
	Mode           IndexMode
}

func (o Options) withDefaults() Options {
	if o.PersistDir == "" {
		o.PersistDir = DefaultPersistDir
	}
	if o.EmbeddingModel == "" {
		o.EmbeddingModel = DefaultEmbeddingModel
	}
	if o.LLMModel == "" {
		o.LLMModel = DefaultLLMModel
	}
	if o.DataDir == "" {
		o.DataDir = DefaultDataDir
	}
	if o.Mode == "" {
		o.Mode = IndexModeAuto
	}
	return o
}

// StoreOpener creates a vector store bound to a persistence directory and an
// embedding model.
type StoreOpener func(persistDir, embeddingModel string) (domain.VectorStore, error)

// Dependencies are the external collaborators of RAGSearch.
type Dependencies struct {
	OpenStore StoreOpener
	Loader    domain.DocumentLoader
	LLM       domain.Generator
}

// RAGSearch answers queries by summarizing the chunks retrieved from a
// persisted vector index with a language model. It is not safe for
// concurrent use.
type RAGSearch struct {
	store    domain.VectorStore
	llm      domain.Generator
	llmModel string
	opts     Options
}

// NewRAGSearch opens the vector store and either builds it from the corpus or
// loads its persisted state, depending on opts.Mode and on whether both index
// artifacts exist in opts.PersistDir.
func NewRAGSearch(ctx context.Context, opts Options, deps Dependencies) (*RAGSearch, error) {
	opts = opts.withDefaults()
	if deps.OpenStore == nil || deps.Loader == nil || deps.LLM == nil {
		return nil, fmt.Errorf("%w: store opener, loader and language model are required", domain.ErrInvalidInput)
	}

	store, err := deps.OpenStore(opts.PersistDir, opts.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	exists, err := artifactsExist(opts.PersistDir)
	if err != nil {
		return nil, err
	}
	build := !exists
	switch opts.Mode {
	case IndexModeBuild:
		build = true
	case IndexModeLoad:
		if !exists {
			return nil, fmt.Errorf("%w: %s and %s required in %s",
				domain.ErrIndexUnavailable, faiss.IndexFile, faiss.MetadataFile, opts.PersistDir)
		}
	}

	if build {
		log.Info().Str("data_dir", opts.DataDir).Str("persist_dir", opts.PersistDir).Msg("building index from corpus")
		docs, err := deps.Loader.LoadAll(ctx, opts.DataDir)
		if err != nil {
			return nil, classify(err, domain.ErrIndexUnavailable, "load corpus")
		}
		if err := store.BuildFromDocuments(ctx, docs); err != nil {
			return nil, classify(err, domain.ErrIndexUnavailable, "build index")
		}
	} else {
		log.Info().Str("persist_dir", opts.PersistDir).Msg("loading index")
		if err := store.Load(ctx); err != nil {
			return nil, classify(err, domain.ErrIndexCorrupt, "load index")
		}
	}

	return &RAGSearch{store: store, llm: deps.LLM, llmModel: opts.LLMModel, opts: opts}, nil
}

// artifactsExist reports whether both index artifacts are present.
func artifactsExist(dir string) (bool, error) {
	for _, name := range []string{faiss.IndexFile, faiss.MetadataFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%w: stat %s: %w", domain.ErrIndexUnavailable, name, err)
		}
	}
	return true, nil
}

var pipelineErrors = []error{
	domain.ErrIndexUnavailable,
	domain.ErrIndexCorrupt,
	domain.ErrEmbeddingFailure,
	domain.ErrGenerationFailure,
	domain.ErrInvalidInput,
}

// classify wraps err with fallback unless it already carries a pipeline error
// or is a context error.
func classify(err, fallback error, op string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, known := range pipelineErrors {
		if errors.Is(err, known) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", fallback, op, err)
}

// SearchAndSummarize retrieves the topK nearest chunks for query and asks the
// language model to summarize them. topK of 0 selects DefaultTopK. When no
// retrieved chunk carries text, NoResultsMessage is returned and the language
// model is not called.
func (s *RAGSearch) SearchAndSummarize(ctx context.Context, query string, topK int) (string, error) {
	if topK < 0 {
		return "", fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, topK)
	}
	if topK == 0 {
		topK = DefaultTopK
	}

	results, err := s.store.Query(ctx, query, topK)
	if err != nil {
		return "", classify(err, domain.ErrEmbeddingFailure, "retrieve")
	}

	contextText := BuildContext(results)
	if contextText == "" {
		log.Debug().Str("query", query).Int("results", len(results)).Msg("no retrieved text")
		return NoResultsMessage, nil
	}

	prompt := BuildPrompt(contextText, query)
	log.Debug().Str("model", s.llmModel).Int("prompt_bytes", len(prompt)).Msg("generating summary")
	out, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return "", classify(err, domain.ErrGenerationFailure, "generate")
	}
	return out, nil
}

// Info describes the index in use.
func (s *RAGSearch) Info() domain.IndexInfo { return s.store.Info() }

// LLMModel returns the recorded language model identifier.
func (s *RAGSearch) LLMModel() string { return s.llmModel }

// Options returns the resolved construction options.
func (s *RAGSearch) Options() Options { return s.opts }
