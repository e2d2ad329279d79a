package service

import (
	"fmt"

	"github.com/hivehr/hivehr/internal/domain"
	"github.com/pkoukk/tiktoken-go"
)

// encodingName matches the tokenizer of the default embedding model.
const encodingName = "cl100k_base"

// ChunkConfig controls token-windowed chunking of policy content.
type ChunkConfig struct {
	ChunkSize int // tokens per chunk
	Overlap   int // tokens shared between consecutive chunks
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		ChunkSize: 500,
		Overlap:   50,
	}
}

// Chunk is one token window of a policy document's content, not yet
// embedded or persisted.
type Chunk struct {
	Text     string
	Index    int
	Metadata map[string]any
}

// Chunker splits policy content into overlapping token-bounded windows.
// Chunking is deterministic: identical content and config always produce
// identical chunk sequences, which makes re-ingestion safe.
type Chunker struct {
	cfg      ChunkConfig
	encoding *tiktoken.Tiktoken
}

// NewChunker creates a Chunker, validating that the stride is positive.
func NewChunker(cfg ChunkConfig) (*Chunker, error) {
	if cfg.ChunkSize <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		return nil, domain.ErrInvalidChunkConfig
	}

	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}

	return &Chunker{cfg: cfg, encoding: encoding}, nil
}

// ChunkDocument splits content into overlapping chunks. Empty content yields
// an empty sequence; policies with no text are still ingestable.
func (c *Chunker) ChunkDocument(content, title, category string) []Chunk {
	tokens := c.encoding.Encode(content, nil, nil)
	if len(tokens) == 0 {
		return nil
	}

	stride := c.cfg.ChunkSize - c.cfg.Overlap
	chunks := make([]Chunk, 0, (len(tokens)+stride-1)/stride)

	for start, index := 0, 0; start < len(tokens); start, index = start+stride, index+1 {
		end := start + c.cfg.ChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		window := tokens[start:end]

		metadata := map[string]any{
			"title":        title,
			"chunk_index":  index,
			"total_tokens": len(window),
		}
		if category != "" {
			metadata["category"] = category
		}

		chunks = append(chunks, Chunk{
			Text:     c.encoding.Decode(window),
			Index:    index,
			Metadata: metadata,
		})
	}

	return chunks
}

// TokenCount returns the number of tokens content encodes to.
func (c *Chunker) TokenCount(content string) int {
	return len(c.encoding.Encode(content, nil, nil))
}
