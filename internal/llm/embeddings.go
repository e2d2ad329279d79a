package llm

import (
	"context"
	"net/http"

	"github.com/hivehr/hivehr/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// Embedder converts text into fixed-length vectors. EmbedMany preserves
// input order, and EmbedMany(nil) returns an empty slice without touching
// the backend.
type Embedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)

	// IsMock reports whether this embedder produces placeholder vectors.
	// Callers surface this so users know search quality is degraded.
	IsMock() bool

	Dimensions() int
}

// NewEmbedder resolves the configured embedding provider once and returns a
// live embedder for it. A configuration-class DomainError means the caller
// should fall back to NewMockEmbedder.
func NewEmbedder(cfg Config) (Embedder, error) {
	cfg = cfg.withDefaults()

	var clientCfg openai.ClientConfig
	switch cfg.EmbeddingProvider {
	case EmbeddingProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, domain.ErrMissingProviderKey
		}
		clientCfg = openai.DefaultConfig(cfg.APIKey)
	case EmbeddingProviderOllama:
		clientCfg = openai.DefaultConfig("ollama")
		clientCfg.BaseURL = defaultOllamaBaseURL
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
	default:
		return nil, domain.ErrUnknownEmbeddingProvider
	}

	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &apiEmbedder{
		api:   openai.NewClientWithConfig(clientCfg),
		model: openai.EmbeddingModel(cfg.EmbeddingModel),
	}, nil
}

// ResolveEmbedder returns a live embedder when the configuration allows one
// and the deterministic mock otherwise. The decision is made exactly once,
// here; a live embedder never silently degrades mid-call.
func ResolveEmbedder(cfg Config) Embedder {
	embedder, err := NewEmbedder(cfg)
	if err != nil {
		return NewMockEmbedder()
	}
	return embedder
}

type apiEmbedder struct {
	api   *openai.Client
	model openai.EmbeddingModel
}

func (e *apiEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *apiEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := e.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeProviderFailure, "embedding request failed", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, domain.NewDomainError(domain.ErrCodeProviderFailure, "embedding response count mismatch")
	}

	// Response data carries an Index field; order output by it so vectors
	// stay parallel to the input even if the API reorders.
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, domain.NewDomainError(domain.ErrCodeProviderFailure, "embedding response index out of range")
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

func (e *apiEmbedder) IsMock() bool { return false }

func (e *apiEmbedder) Dimensions() int { return EmbeddingDimensions }
