// Package faiss is a persisted flat vector store. It keeps the on-disk layout
// of a FAISS store (faiss.index plus metadata.pkl in one directory) with Go
// native encodings: raw little endian float32 vectors and a gob metadata file.
package faiss

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"ragsearch/internal/domain"
	"ragsearch/internal/vectorstore/memory"
)

// Ensure Store implements the interface.
var _ domain.VectorStore = (*Store)(nil)

// Store chunks, embeds, indexes and persists documents under one directory.
type Store struct {
	dir            string
	embeddingModel string
	embedder       domain.Embedder
	chunker        domain.Chunker
	summarizer     domain.Summarizer
	digestLen      int
	index          *memory.Storage
	info           domain.IndexInfo
}

// Option configures a Store.
type Option func(*Store)

// WithSummarizer records an extractive digest of the corpus of up to
// maxSentences sentences at build time.
func WithSummarizer(s domain.Summarizer, maxSentences int) Option {
	return func(st *Store) {
		st.summarizer = s
		st.digestLen = maxSentences
	}
}

// New creates a store bound to dir. Nothing is read or written until
// BuildFromDocuments or Load is called.
func New(dir, embeddingModel string, embedder domain.Embedder, chunker domain.Chunker, opts ...Option) *Store {
	s := &Store{
		dir:            dir,
		embeddingModel: embeddingModel,
		embedder:       embedder,
		chunker:        chunker,
		index:          memory.NewStorage(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the persistence directory.
func (s *Store) Dir() string { return s.dir }

// Info describes the index currently held in memory.
func (s *Store) Info() domain.IndexInfo { return s.info }

// BuildFromDocuments indexes docs and persists the result, replacing any
// previous artifacts.
func (s *Store) BuildFromDocuments(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return fmt.Errorf("%w: no documents to index", domain.ErrIndexUnavailable)
	}
	var chunks []domain.Chunk
	var corpus strings.Builder
	for _, d := range docs {
		cs, err := s.chunker.Chunk(d)
		if err != nil {
			return fmt.Errorf("chunk %s: %w", d.Path, err)
		}
		chunks = append(chunks, cs...)
		corpus.WriteString(d.Content)
		corpus.WriteString("\n")
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: documents produced no chunks", domain.ErrIndexUnavailable)
	}
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	log.Info().Int("documents", len(docs)).Int("chunks", len(chunks)).Str("embedder", s.embedder.Name()).Msg("building index")
	if err := s.embedder.Prepare(ctx, texts); err != nil {
		return fmt.Errorf("%w: prepare %s: %w", domain.ErrEmbeddingFailure, s.embedder.Name(), err)
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("%w: embed chunk %s: %w", domain.ErrEmbeddingFailure, chunks[i].ChunkID, err)
		}
		vectors[i] = vec
	}
	dim := len(vectors[0])
	if err := s.index.Init(dim); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
	}
	if err := s.index.Upsert(chunks, vectors); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
	}

	info := domain.IndexInfo{
		BuildID:        uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Embedder:       s.embedder.Name(),
		EmbeddingModel: s.embeddingModel,
		Dimension:      dim,
		Documents:      len(docs),
		Chunks:         len(chunks),
	}
	if s.summarizer != nil {
		digest, err := s.summarizer.Summarize(corpus.String(), s.digestLen)
		if err != nil {
			log.Warn().Err(err).Msg("corpus digest failed")
		}
		info.Digest = digest
	}
	if err := s.persist(info); err != nil {
		return fmt.Errorf("persist index to %s: %w", s.dir, err)
	}
	s.info = info
	log.Info().Str("build_id", info.BuildID).Str("dir", s.dir).Msg("index persisted")
	return nil
}

func (s *Store) persist(info domain.IndexInfo) error {
	chunks, vectors := s.index.Snapshot()
	indexData, err := encodeIndex(info.Dimension, vectors)
	if err != nil {
		return err
	}
	meta := metadata{
		Version:       formatVersion,
		Info:          info,
		IndexChecksum: checksum(indexData),
		Chunks:        chunks,
	}
	if m, ok := s.embedder.(encoding.BinaryMarshaler); ok {
		state, err := m.MarshalBinary()
		if err != nil {
			return err
		}
		meta.EmbedderState = state
	}
	metaData, err := encodeMetadata(meta)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	// metadata.pkl goes last so its presence implies a complete faiss.index
	if err := writeAtomic(filepath.Join(s.dir, IndexFile), indexData); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.dir, MetadataFile), metaData)
}

// Load reads and validates the persisted artifacts.
func (s *Store) Load(ctx context.Context) error {
	indexData, err := s.readArtifact(IndexFile)
	if err != nil {
		return err
	}
	metaData, err := s.readArtifact(MetadataFile)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	meta, err := decodeMetadata(metaData)
	if err != nil {
		return s.corrupt("decode %s: %v", MetadataFile, err)
	}
	if meta.Version != formatVersion {
		return s.corrupt("metadata version %d, want %d", meta.Version, formatVersion)
	}
	if got := checksum(indexData); got != meta.IndexChecksum {
		return s.corrupt("%s checksum %s does not match metadata %s", IndexFile, got, meta.IndexChecksum)
	}
	dim, vectors, err := decodeIndex(indexData)
	if err != nil {
		return s.corrupt("decode %s: %v", IndexFile, err)
	}
	if dim != meta.Info.Dimension || len(vectors) != len(meta.Chunks) {
		return s.corrupt("index holds %d vectors of dimension %d, metadata describes %d of dimension %d",
			len(vectors), dim, len(meta.Chunks), meta.Info.Dimension)
	}
	if meta.Info.Embedder != s.embedder.Name() {
		return s.corrupt("built with embedder %q, configured %q", meta.Info.Embedder, s.embedder.Name())
	}
	if meta.Info.EmbeddingModel != s.embeddingModel {
		return s.corrupt("built with embedding model %q, configured %q", meta.Info.EmbeddingModel, s.embeddingModel)
	}
	if u, ok := s.embedder.(encoding.BinaryUnmarshaler); ok {
		if len(meta.EmbedderState) == 0 {
			return s.corrupt("metadata carries no %s embedder state", s.embedder.Name())
		}
		if err := u.UnmarshalBinary(meta.EmbedderState); err != nil {
			return s.corrupt("restore embedder: %v", err)
		}
	}

	if err := s.index.Init(dim); err != nil {
		return s.corrupt("%v", err)
	}
	if err := s.index.Upsert(meta.Chunks, vectors); err != nil {
		return s.corrupt("%v", err)
	}
	s.info = meta.Info
	log.Info().Str("build_id", meta.Info.BuildID).Int("chunks", len(meta.Chunks)).Str("dir", s.dir).Msg("index loaded")
	return nil
}

func (s *Store) readArtifact(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s missing in %s", domain.ErrIndexUnavailable, name, s.dir)
	}
	if err != nil {
		return nil, s.corrupt("read %s: %v", name, err)
	}
	return data, nil
}

func (s *Store) corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrIndexCorrupt, s.dir, fmt.Sprintf(format, args...))
}

// Query embeds query and returns up to topK nearest chunks. Each result's
// metadata carries text, source, document_id, chunk_id and index.
func (s *Store) Query(ctx context.Context, query string, topK int) ([]domain.Result, error) {
	if s.index.Len() == 0 {
		return nil, fmt.Errorf("%w: index not built or loaded", domain.ErrIndexUnavailable)
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbeddingFailure, err)
	}
	hits, err := s.index.Search(vec, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", domain.ErrEmbeddingFailure, err)
	}
	results := make([]domain.Result, len(hits))
	for i, h := range hits {
		results[i] = domain.Result{
			Metadata: map[string]any{
				"text":        h.Chunk.Text,
				"source":      h.Chunk.Source,
				"document_id": h.Chunk.DocumentID,
				"chunk_id":    h.Chunk.ChunkID,
				"index":       h.Chunk.Index,
			},
			Score: h.Score,
		}
	}
	log.Debug().Str("query", query).Int("top_k", topK).Int("hits", len(results)).Msg("vector query")
	return results, nil
}
