package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLM_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream *bool  `json:"stream"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "qwen2.5:1.5b", req.Model)
		assert.Equal(t, "the prompt", req.Prompt)
		require.NotNil(t, req.Stream)
		assert.False(t, *req.Stream)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"qwen2.5:1.5b","response":"the summary","done":true}` + "\n"))
	}))
	defer srv.Close()

	l, err := New(Config{BaseURL: srv.URL, Model: "qwen2.5:1.5b"})
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5:1.5b", l.ModelName())

	out, err := l.Generate(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "the summary", out)
}

func TestLLM_GenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'missing' not found"}`))
	}))
	defer srv.Close()

	l, err := New(Config{BaseURL: srv.URL, Model: "missing"})
	require.NoError(t, err)
	_, err = l.Generate(context.Background(), "p")
	assert.Error(t, err)
}
