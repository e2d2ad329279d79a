//go:build integration

package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivehr/hivehr/internal/domain"
)

func chunkFor(policy *domain.PolicyDocument, index int, text string, fill float32) domain.PolicyChunk {
	return domain.PolicyChunk{
		ID:         uuid.NewString(),
		PolicyID:   policy.ID,
		OrgID:      policy.OrgID,
		ChunkIndex: index,
		ChunkText:  text,
		Embedding:  testVector(fill),
		Metadata:   map[string]any{"title": policy.Title, "chunk_index": index},
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestPolicyChunkRepository_ReplaceChunks(t *testing.T) {
	ctx, pool := newTestDB(t)
	repo := NewPolicyChunkRepository(pool)

	org := seedOrg(ctx, t, pool, "Acme")
	policy := seedPolicy(ctx, t, pool, org.ID, "Leave Policy")

	first := []domain.PolicyChunk{
		chunkFor(policy, 0, "first generation chunk 0", 0.1),
		chunkFor(policy, 1, "first generation chunk 1", 0.2),
		chunkFor(policy, 2, "first generation chunk 2", 0.3),
	}
	require.NoError(t, repo.ReplaceChunks(ctx, policy.ID, first))

	count, err := repo.CountByOrg(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Re-ingesting leaves only the latest generation, no accumulation.
	second := []domain.PolicyChunk{
		chunkFor(policy, 0, "second generation chunk 0", 0.4),
	}
	require.NoError(t, repo.ReplaceChunks(ctx, policy.ID, second))

	count, err = repo.CountByOrg(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := repo.Search(ctx, org.ID, testVector(0.4), 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "second generation chunk 0", results[0].ChunkText)
}

func TestPolicyChunkRepository_ReplaceChunks_EmptyClearsAll(t *testing.T) {
	ctx, pool := newTestDB(t)
	repo := NewPolicyChunkRepository(pool)

	org := seedOrg(ctx, t, pool, "Acme")
	policy := seedPolicy(ctx, t, pool, org.ID, "Leave Policy")

	require.NoError(t, repo.ReplaceChunks(ctx, policy.ID, []domain.PolicyChunk{
		chunkFor(policy, 0, "some chunk", 0.1),
	}))
	require.NoError(t, repo.ReplaceChunks(ctx, policy.ID, nil))

	count, err := repo.CountByOrg(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPolicyChunkRepository_Search_Ordering(t *testing.T) {
	ctx, pool := newTestDB(t)
	repo := NewPolicyChunkRepository(pool)

	org := seedOrg(ctx, t, pool, "Acme")
	policy := seedPolicy(ctx, t, pool, org.ID, "Leave Policy")

	// An orthogonal-ish spread: the query vector matches chunk 1 exactly.
	near := testVector(0.5)
	far := make([]float32, 1536)
	far[0] = 1
	mid := make([]float32, 1536)
	mid[0] = 1
	mid[1] = 1

	require.NoError(t, repo.ReplaceChunks(ctx, policy.ID, []domain.PolicyChunk{
		{ID: uuid.NewString(), PolicyID: policy.ID, OrgID: org.ID, ChunkIndex: 0, ChunkText: "far", Embedding: far},
		{ID: uuid.NewString(), PolicyID: policy.ID, OrgID: org.ID, ChunkIndex: 1, ChunkText: "near", Embedding: near},
		{ID: uuid.NewString(), PolicyID: policy.ID, OrgID: org.ID, ChunkIndex: 2, ChunkText: "mid", Embedding: mid},
	}))

	results, err := repo.Search(ctx, org.ID, testVector(0.5), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].ChunkText)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
}

func TestPolicyChunkRepository_Search_TenantIsolation(t *testing.T) {
	ctx, pool := newTestDB(t)
	repo := NewPolicyChunkRepository(pool)

	orgA := seedOrg(ctx, t, pool, "Acme")
	orgB := seedOrg(ctx, t, pool, "Globex")
	// Same title and content under both tenants.
	policyA := seedPolicy(ctx, t, pool, orgA.ID, "Leave Policy")
	policyB := seedPolicy(ctx, t, pool, orgB.ID, "Leave Policy")

	require.NoError(t, repo.ReplaceChunks(ctx, policyA.ID, []domain.PolicyChunk{
		chunkFor(policyA, 0, "tenant A chunk", 0.1),
	}))
	require.NoError(t, repo.ReplaceChunks(ctx, policyB.ID, []domain.PolicyChunk{
		chunkFor(policyB, 0, "tenant B chunk", 0.1),
	}))

	results, err := repo.Search(ctx, orgA.ID, testVector(0.1), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, policyA.ID, results[0].PolicyID)
}

func TestPolicyChunkRepository_Search_MetadataRoundTrip(t *testing.T) {
	ctx, pool := newTestDB(t)
	repo := NewPolicyChunkRepository(pool)

	org := seedOrg(ctx, t, pool, "Acme")
	policy := seedPolicy(ctx, t, pool, org.ID, "Leave Policy")

	require.NoError(t, repo.ReplaceChunks(ctx, policy.ID, []domain.PolicyChunk{
		chunkFor(policy, 0, "chunk with metadata", 0.2),
	}))

	results, err := repo.Search(ctx, org.ID, testVector(0.2), 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Leave Policy", results[0].Metadata["title"])
	assert.Equal(t, float64(0), results[0].Metadata["chunk_index"])
}
