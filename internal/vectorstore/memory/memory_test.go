package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragsearch/internal/domain"
)

func chunks(ids ...string) []domain.Chunk {
	out := make([]domain.Chunk, len(ids))
	for i, id := range ids {
		out[i] = domain.Chunk{ChunkID: id, Text: "text " + id}
	}
	return out
}

func TestStorage_SearchOrdersByCosine(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(chunks("x", "y", "xy"), [][]float32{{1, 0}, {0, 3}, {1, 1}}))

	res, err := s.Search([]float32{2, 0}, 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "x", res[0].Chunk.ChunkID)
	assert.InDelta(t, 1.0, res[0].Score, 1e-6)
	assert.Equal(t, "xy", res[1].Chunk.ChunkID)
	assert.Equal(t, "y", res[2].Chunk.ChunkID)
	assert.InDelta(t, 0.0, res[2].Score, 1e-6)
}

func TestStorage_TopKClamped(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(chunks("a", "b"), [][]float32{{1, 0}, {0, 1}}))

	res, err := s.Search([]float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, res, 2)

	res, err = s.Search([]float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestStorage_TiesKeepInsertionOrder(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(1))
	require.NoError(t, s.Upsert(chunks("first", "second", "third"), [][]float32{{1}, {1}, {1}}))

	res, err := s.Search([]float32{1}, 3)
	require.NoError(t, err)
	assert.Equal(t, "first", res[0].Chunk.ChunkID)
	assert.Equal(t, "second", res[1].Chunk.ChunkID)
	assert.Equal(t, "third", res[2].Chunk.ChunkID)
}

func TestStorage_Errors(t *testing.T) {
	s := NewStorage()
	assert.Error(t, s.Init(0))
	assert.Error(t, s.Upsert(chunks("a"), [][]float32{{1}}), "uninitialised")

	require.NoError(t, s.Init(2))
	assert.Error(t, s.Upsert(chunks("a"), nil))
	assert.Error(t, s.Upsert(chunks("a"), [][]float32{{1, 2, 3}}))
	_, err := s.Search([]float32{1}, 1)
	assert.Error(t, err)
}

func TestStorage_SnapshotAndClear(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(chunks("a"), [][]float32{{3, 4}}))

	cs, vs := s.Snapshot()
	require.Len(t, cs, 1)
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, vs[0], 1e-6)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Clear())
	assert.Zero(t, s.Len())
	assert.Equal(t, 2, s.Dimension())
}
