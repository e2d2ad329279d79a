package llm

import (
	"context"
	"testing"

	"github.com/hivehr/hivehr/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedder_OpenAIRequiresKey(t *testing.T) {
	_, err := NewEmbedder(Config{EmbeddingProvider: EmbeddingProviderOpenAI})
	assert.ErrorIs(t, err, domain.ErrMissingProviderKey)
}

func TestNewEmbedder_OllamaNeedsNoKey(t *testing.T) {
	embedder, err := NewEmbedder(Config{EmbeddingProvider: EmbeddingProviderOllama})
	require.NoError(t, err)
	assert.False(t, embedder.IsMock())
}

func TestNewEmbedder_UnknownProvider(t *testing.T) {
	_, err := NewEmbedder(Config{EmbeddingProvider: EmbeddingProvider("cohere")})
	assert.ErrorIs(t, err, domain.ErrUnknownEmbeddingProvider)
}

func TestResolveEmbedder_FallsBackToMock(t *testing.T) {
	embedder := ResolveEmbedder(Config{EmbeddingProvider: EmbeddingProviderOpenAI})
	assert.True(t, embedder.IsMock())
}

func TestResolveEmbedder_LiveWhenConfigured(t *testing.T) {
	embedder := ResolveEmbedder(Config{EmbeddingProvider: EmbeddingProviderOpenAI, APIKey: "sk-test"})
	assert.False(t, embedder.IsMock())
}

func TestMockEmbedder_Dimensions(t *testing.T) {
	ctx := context.Background()
	embedder := NewMockEmbedder()

	vec, err := embedder.EmbedOne(ctx, "parental leave policy")
	require.NoError(t, err)
	assert.Len(t, vec, EmbeddingDimensions)

	vectors, err := embedder.EmbedMany(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	for _, v := range vectors {
		assert.Len(t, v, EmbeddingDimensions)
	}
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	embedder := NewMockEmbedder()

	first, err := embedder.EmbedOne(ctx, "same text")
	require.NoError(t, err)
	second, err := embedder.EmbedOne(ctx, "same text")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := embedder.EmbedOne(ctx, "different text")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestMockEmbedder_EmptyBatch(t *testing.T) {
	vectors, err := NewMockEmbedder().EmbedMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}
