package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hivehr/hivehr/internal/domain"
	"github.com/hivehr/hivehr/internal/llm"
)

// DefaultTopK is the number of chunks retrieved when the caller does not ask
// for a specific count.
const DefaultTopK = 5

// PolicyReader defines the repository interface the pipeline needs for
// policy documents.
type PolicyReader interface {
	GetByIDForOrg(ctx context.Context, id, orgID string) (*domain.PolicyDocument, error)
	ListActiveByOrg(ctx context.Context, orgID string) ([]*domain.PolicyDocument, error)
}

// PolicyChunkReplacer swaps the full chunk set for one policy document.
type PolicyChunkReplacer interface {
	ReplaceChunks(ctx context.Context, policyID string, chunks []domain.PolicyChunk) error
}

// ChunkSearcher performs tenant-scoped nearest-neighbor search over stored
// chunk embeddings.
type ChunkSearcher interface {
	Search(ctx context.Context, orgID string, embedding []float32, limit int) ([]*domain.RetrievedChunk, error)
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// RAGService orchestrates the chunker, embedder and retriever for policy
// ingestion and semantic querying. All operations are scoped to exactly one
// organization.
type RAGService struct {
	chunker    *Chunker
	embedder   llm.Embedder
	policyRepo PolicyReader
	searchRepo ChunkSearcher
	tx         TxRunner
	uuidGen    UUIDGenerator
}

// NewRAGService creates a new RAGService instance
func NewRAGService(
	chunker *Chunker,
	embedder llm.Embedder,
	policyRepo PolicyReader,
	searchRepo ChunkSearcher,
	tx TxRunner,
) *RAGService {
	return &RAGService{
		chunker:    chunker,
		embedder:   embedder,
		policyRepo: policyRepo,
		searchRepo: searchRepo,
		tx:         tx,
		uuidGen:    &DefaultUUIDGenerator{},
	}
}

// NewRAGServiceWithUUIDGen creates a RAGService with a custom UUID generator (for testing)
func NewRAGServiceWithUUIDGen(
	chunker *Chunker,
	embedder llm.Embedder,
	policyRepo PolicyReader,
	searchRepo ChunkSearcher,
	tx TxRunner,
	uuidGen UUIDGenerator,
) *RAGService {
	svc := NewRAGService(chunker, embedder, policyRepo, searchRepo, tx)
	svc.uuidGen = uuidGen
	return svc
}

// IsMockEmbeddings reports whether the pipeline runs on placeholder vectors,
// so callers can warn that search quality is degraded.
func (s *RAGService) IsMockEmbeddings() bool {
	return s.embedder.IsMock()
}

// Ingest chunks a policy document, embeds every chunk in one batched call
// and atomically replaces the stored chunk set. It returns the number of
// chunks created. A document with no content yields zero chunks and clears
// any previous generation.
//
// A wrong-tenant id and a nonexistent id are indistinguishable to the
// caller; both return ErrPolicyNotFound.
func (s *RAGService) Ingest(ctx context.Context, policyID, orgID string) (int, error) {
	policy, err := s.policyRepo.GetByIDForOrg(ctx, policyID, orgID)
	if err != nil {
		return 0, err
	}

	chunks := s.chunker.ChunkDocument(policy.Content, policy.Title, policy.Category)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedMany(ctx, texts)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	rows := make([]domain.PolicyChunk, len(chunks))
	for i, c := range chunks {
		rows[i] = domain.PolicyChunk{
			ID:         s.uuidGen.NewString(),
			PolicyID:   policy.ID,
			OrgID:      policy.OrgID,
			ChunkIndex: c.Index,
			ChunkText:  c.Text,
			Embedding:  vectors[i],
			Metadata:   c.Metadata,
			CreatedAt:  now,
		}
	}

	// Delete and insert inside one transaction so a reader never observes a
	// partial mix of old and new chunk generations.
	err = s.tx.WithTx(ctx, func(repos TxRepositories) error {
		return repos.PolicyChunks().ReplaceChunks(ctx, policy.ID, rows)
	})
	if err != nil {
		return 0, err
	}

	log.Printf("ingested policy %s: %d chunks", policy.ID, len(rows))
	return len(rows), nil
}

// Query embeds the question once and retrieves the topK most similar chunks
// for the organization. It is a pure read and safe to call concurrently.
func (s *RAGService) Query(ctx context.Context, question, orgID string, topK int) ([]*domain.RetrievedChunk, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	embedding, err := s.embedder.EmbedOne(ctx, question)
	if err != nil {
		return nil, err
	}

	return s.searchRepo.Search(ctx, orgID, embedding, topK)
}

// Reindex re-ingests every active policy document for the organization and
// returns the total chunk count across the documents that succeeded.
// Per-document failures are logged and skipped rather than aborting the
// remaining documents.
func (s *RAGService) Reindex(ctx context.Context, orgID string) (int, error) {
	policies, err := s.policyRepo.ListActiveByOrg(ctx, orgID)
	if err != nil {
		return 0, err
	}

	total := 0
	failed := 0
	for _, policy := range policies {
		count, err := s.Ingest(ctx, policy.ID, orgID)
		if err != nil {
			failed++
			log.Printf("reindex: ingest failed for policy %s: %v", policy.ID, err)
			continue
		}
		total += count
	}

	log.Printf("reindexed org %s: %d policies, %d failed, %d total chunks", orgID, len(policies), failed, total)
	return total, nil
}
