package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/hivehr/hivehr/internal/domain"
)

// PolicyChunkRepository handles persistence of chunked policy embeddings.
type PolicyChunkRepository struct {
	db dbtx
}

func NewPolicyChunkRepository(pool *pgxpool.Pool) *PolicyChunkRepository {
	return &PolicyChunkRepository{db: pool}
}

func NewPolicyChunkRepositoryWithTx(tx dbtx) *PolicyChunkRepository {
	return &PolicyChunkRepository{db: tx}
}

// ReplaceChunks deletes existing chunks for a policy document and inserts
// the new generation.
func (r *PolicyChunkRepository) ReplaceChunks(ctx context.Context, policyID string, chunks []domain.PolicyChunk) error {
	_, err := r.db.Exec(ctx, `DELETE FROM policy_chunks WHERE policy_document_id = $1`, policyID)
	if err != nil {
		return err
	}

	if len(chunks) == 0 {
		return nil
	}

	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		metadata, err := json.Marshal(c.Metadata)
		if err != nil {
			return err
		}
		_, err = r.db.Exec(ctx,
			`INSERT INTO policy_chunks
				(id, policy_document_id, org_id, chunk_index, chunk_text, embedding, metadata, created_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID,
			c.PolicyID,
			c.OrgID,
			c.ChunkIndex,
			c.ChunkText,
			pgvector.NewVector(c.Embedding),
			metadata,
			createdAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// Search returns the chunks nearest the query embedding by cosine distance,
// scoped to one organization. Similarity is 1 - distance.
func (r *PolicyChunkRepository) Search(ctx context.Context, orgID string, embedding []float32, limit int) ([]*domain.RetrievedChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, policy_document_id, chunk_index, chunk_text, metadata,
		        1 - (embedding <=> $1) AS similarity
		 FROM policy_chunks
		 WHERE org_id = $2 AND embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		pgvector.NewVector(embedding), orgID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.RetrievedChunk
	for rows.Next() {
		var c domain.RetrievedChunk
		var metadata []byte
		if err := rows.Scan(&c.ID, &c.PolicyID, &c.ChunkIndex, &c.ChunkText, &metadata, &c.Similarity); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &c.Metadata); err != nil {
				return nil, err
			}
		}
		results = append(results, &c)
	}
	return results, rows.Err()
}

// CountByOrg reports the stored chunk count for one organization.
func (r *PolicyChunkRepository) CountByOrg(ctx context.Context, orgID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM policy_chunks WHERE org_id = $1`,
		orgID,
	).Scan(&count)
	return count, err
}
