package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragsearch/internal/config"
	"ragsearch/internal/domain"
	"ragsearch/internal/vectorstore/faiss"
)

// ollamaServer answers /api/generate with a fixed completion and records prompts.
func ollamaServer(t *testing.T, prompts *[]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*prompts = append(*prompts, req.Prompt)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"Bread is baked in ovens.","done":true}` + "\n"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, llmURL string) *config.AppConfig {
	t.Helper()
	root := t.TempDir()
	data := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "bread.txt"),
		[]byte("Bread needs flour and yeast. Ovens bake bread at high heat."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(data, "go.md"),
		[]byte("Goroutines are cheap. Channels connect goroutines."), 0o644))

	cfg := config.Default()
	cfg.Index.DataDir = data
	cfg.Index.PersistDir = filepath.Join(root, "faiss_store")
	cfg.Chunker.SentencesPerChunk = 1
	cfg.Chunker.OverlapSentences = 0
	cfg.LLM = config.LLMConfig{Type: "ollama", Model: "qwen2.5:1.5b", Ollama: &config.OllamaConfig{BaseURL: llmURL}}
	return cfg
}

func TestNewRAGSearch_BuildThenLoad(t *testing.T) {
	var prompts []string
	srv := ollamaServer(t, &prompts)
	cfg := testConfig(t, srv.URL)
	ctx := context.Background()

	first, err := NewRAGSearch(ctx, cfg)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cfg.Index.PersistDir, faiss.IndexFile))
	assert.FileExists(t, filepath.Join(cfg.Index.PersistDir, faiss.MetadataFile))
	assert.Equal(t, 2, first.Info().Documents)

	second, err := NewRAGSearch(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, first.Info().BuildID, second.Info().BuildID, "second construction loads the persisted index")

	out, err := second.SearchAndSummarize(ctx, "how do ovens bake bread", 1)
	require.NoError(t, err)
	assert.Equal(t, "Bread is baked in ovens.", out)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Ovens bake bread at high heat.")
	assert.Contains(t, prompts[0], "how do ovens bake bread")
}

func TestNewRAGSearch_MissingCorpus(t *testing.T) {
	var prompts []string
	cfg := testConfig(t, ollamaServer(t, &prompts).URL)
	cfg.Index.DataDir = filepath.Join(t.TempDir(), "nowhere")

	_, err := NewRAGSearch(context.Background(), cfg)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestNewRAGSearch_BadMode(t *testing.T) {
	cfg := config.Default()
	cfg.Index.Mode = "maybe"
	_, err := NewRAGSearch(context.Background(), cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFactories_UnknownTypes(t *testing.T) {
	_, err := NewEmbedder(config.EmbedderConfig{Type: "word2vec"})
	assert.Error(t, err)
	_, err = NewChunker(config.ChunkerConfig{Type: "paragraph"})
	assert.Error(t, err)
	_, err = NewSummarizer(config.SummarizerConfig{Type: "abstractive"})
	assert.Error(t, err)
	_, err = NewLLM(config.LLMConfig{Type: "groq"})
	assert.Error(t, err)
	_, err = NewLLM(config.LLMConfig{Type: "ollama"})
	assert.Error(t, err, "missing ollama section")
}

func TestNewSummarizer_None(t *testing.T) {
	s, err := NewSummarizer(config.SummarizerConfig{Type: "none"})
	require.NoError(t, err)
	assert.Nil(t, s)
}
