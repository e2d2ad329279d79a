package domain

import "time"

// PolicyChunk is a token-bounded window of a policy document's content,
// the atomic unit of embedding and retrieval. OrgID is denormalized from
// the parent document so tenant filtering never needs a join.
type PolicyChunk struct {
	ID         string
	PolicyID   string
	OrgID      string
	ChunkIndex int
	ChunkText  string
	Embedding  []float32 // nil until embedded
	Metadata   map[string]any
	CreatedAt  time.Time
}

// RetrievedChunk is a PolicyChunk projected with its similarity score for a
// specific query. It is never persisted.
type RetrievedChunk struct {
	ID         string
	PolicyID   string
	ChunkText  string
	ChunkIndex int
	Similarity float64
	Metadata   map[string]any
}
