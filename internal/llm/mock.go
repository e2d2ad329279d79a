package llm

import (
	"context"
	"hash/fnv"
	"math/rand"
)

// mockEmbedder produces fixed-dimensionality placeholder vectors for dev and
// test environments with no embedding credentials. Vectors are seeded from
// the input text so repeated embedding of the same text is reproducible, but
// they carry no semantic meaning.
type mockEmbedder struct{}

// NewMockEmbedder returns the deterministic placeholder embedder.
func NewMockEmbedder() Embedder {
	return mockEmbedder{}
}

func (mockEmbedder) EmbedOne(_ context.Context, text string) ([]float32, error) {
	return mockVector(text), nil
}

func (mockEmbedder) EmbedMany(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = mockVector(text)
	}
	return vectors, nil
}

func (mockEmbedder) IsMock() bool { return true }

func (mockEmbedder) Dimensions() int { return EmbeddingDimensions }

func mockVector(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, EmbeddingDimensions)
	for i := range vec {
		vec[i] = rng.Float32()*2 - 1
	}
	return vec
}
