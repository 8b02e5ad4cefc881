package domain

import "context"

// Document represents a single file loaded from the corpus directory.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a semantically meaningful part of a document used for indexing.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Source     string
	Text       string
	Index      int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Result is a record returned by a vector store query. Metadata may be nil and
// may or may not carry a "text" entry.
type Result struct {
	Metadata map[string]any
	Score    float64
}

// Text returns the chunk text carried in the result metadata. It reports false
// when the metadata or its "text" entry is absent, not a string, or empty.
func (r Result) Text() (string, bool) {
	if r.Metadata == nil {
		return "", false
	}
	text, ok := r.Metadata["text"].(string)
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(ctx context.Context, corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// DocumentLoader produces the documents to ingest from a corpus directory.
type DocumentLoader interface {
	LoadAll(ctx context.Context, dir string) ([]Document, error)
}

// VectorStore owns embedding, index construction, persistence and
// nearest-neighbour query.
type VectorStore interface {
	BuildFromDocuments(ctx context.Context, docs []Document) error
	Load(ctx context.Context) error
	Query(ctx context.Context, query string, topK int) ([]Result, error)
	Info() IndexInfo
}

// Generator is any language model client able to complete a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
