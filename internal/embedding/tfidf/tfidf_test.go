package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"Go channels carry values between goroutines.",
	"Vector indexes answer nearest neighbour queries.",
	"The gopher likes channels and goroutines.",
}

func TestEmbedder_NotPrepared(t *testing.T) {
	_, err := NewEmbedder().Embed(context.Background(), "anything")
	assert.Error(t, err)
}

func TestEmbedder_EmptyCorpus(t *testing.T) {
	assert.Error(t, NewEmbedder().Prepare(context.Background(), nil))
}

func TestEmbedder_EmbedIsNormalized(t *testing.T) {
	ctx := context.Background()
	e := NewEmbedder()
	require.NoError(t, e.Prepare(ctx, corpus))
	require.Positive(t, e.Dimension())

	vec, err := e.Embed(ctx, "channels and goroutines")
	require.NoError(t, err)
	require.Len(t, vec, e.Dimension())

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestEmbedder_UnknownTokensGiveZeroVector(t *testing.T) {
	ctx := context.Background()
	e := NewEmbedder()
	require.NoError(t, e.Prepare(ctx, corpus))

	vec, err := e.Embed(ctx, "zebra")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestEmbedder_BinaryStateRestoresVocabulary(t *testing.T) {
	ctx := context.Background()
	e := NewEmbedder()
	require.NoError(t, e.Prepare(ctx, corpus))
	data, err := e.MarshalBinary()
	require.NoError(t, err)

	restored := NewEmbedder()
	require.NoError(t, restored.UnmarshalBinary(data))
	assert.Equal(t, e.Dimension(), restored.Dimension())

	want, err := e.Embed(ctx, "nearest neighbour gopher")
	require.NoError(t, err)
	got, err := restored.Embed(ctx, "nearest neighbour gopher")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEmbedder_UnmarshalGarbage(t *testing.T) {
	assert.Error(t, NewEmbedder().UnmarshalBinary([]byte("not gob")))
}
