package domain

import "time"

// IndexInfo describes a built or loaded vector index.
type IndexInfo struct {
	BuildID        string
	CreatedAt      time.Time
	Embedder       string
	EmbeddingModel string
	Dimension      int
	Documents      int
	Chunks         int
	Digest         string
}
