package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hivehr/hivehr/internal/domain"
	"github.com/hivehr/hivehr/internal/llm"
)

type mockPolicyReader struct {
	mock.Mock
}

func (m *mockPolicyReader) GetByIDForOrg(ctx context.Context, id, orgID string) (*domain.PolicyDocument, error) {
	args := m.Called(ctx, id, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PolicyDocument), args.Error(1)
}

func (m *mockPolicyReader) ListActiveByOrg(ctx context.Context, orgID string) ([]*domain.PolicyDocument, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PolicyDocument), args.Error(1)
}

type mockChunkReplacer struct {
	mock.Mock
}

func (m *mockChunkReplacer) ReplaceChunks(ctx context.Context, policyID string, chunks []domain.PolicyChunk) error {
	args := m.Called(ctx, policyID, chunks)
	return args.Error(0)
}

type mockChunkSearcher struct {
	mock.Mock
}

func (m *mockChunkSearcher) Search(ctx context.Context, orgID string, embedding []float32, limit int) ([]*domain.RetrievedChunk, error) {
	args := m.Called(ctx, orgID, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RetrievedChunk), args.Error(1)
}

// stubTxRunner executes the callback directly with a fixed replacer, no
// real transaction involved.
type stubTxRunner struct {
	chunks PolicyChunkReplacer
}

type stubTxRepositories struct {
	chunks PolicyChunkReplacer
}

func (r stubTxRepositories) PolicyChunks() PolicyChunkReplacer { return r.chunks }

func (t stubTxRunner) WithTx(ctx context.Context, fn func(TxRepositories) error) error {
	return fn(stubTxRepositories{chunks: t.chunks})
}

type fixedUUIDGenerator struct {
	next int
}

func (g *fixedUUIDGenerator) NewString() string {
	g.next++
	return string(rune('a'+g.next-1)) + "-uuid"
}

func newTestRAGService(t *testing.T, policyRepo PolicyReader, replacer PolicyChunkReplacer, searcher ChunkSearcher) *RAGService {
	t.Helper()

	chunker, err := NewChunker(DefaultChunkConfig())
	require.NoError(t, err)

	embedder := llm.NewMockEmbedder()

	return NewRAGServiceWithUUIDGen(
		chunker,
		embedder,
		policyRepo,
		searcher,
		stubTxRunner{chunks: replacer},
		&fixedUUIDGenerator{},
	)
}

func TestRAGService_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("chunks and replaces atomically", func(t *testing.T) {
		policyRepo := new(mockPolicyReader)
		replacer := new(mockChunkReplacer)

		policy := &domain.PolicyDocument{
			ID:       "pol-1",
			OrgID:    "org-1",
			Title:    "Leave Policy",
			Content:  "Employees accrue twenty days of annual leave per calendar year.",
			Category: "leave",
			IsActive: true,
		}
		policyRepo.On("GetByIDForOrg", ctx, "pol-1", "org-1").Return(policy, nil)

		var captured []domain.PolicyChunk
		replacer.On("ReplaceChunks", ctx, "pol-1", mock.Anything).
			Run(func(args mock.Arguments) {
				captured = args.Get(2).([]domain.PolicyChunk)
			}).
			Return(nil)

		svc := newTestRAGService(t, policyRepo, replacer, nil)

		count, err := svc.Ingest(ctx, "pol-1", "org-1")

		require.NoError(t, err)
		assert.Equal(t, 1, count)
		require.Len(t, captured, 1)
		assert.Equal(t, "pol-1", captured[0].PolicyID)
		assert.Equal(t, "org-1", captured[0].OrgID)
		assert.Equal(t, 0, captured[0].ChunkIndex)
		assert.Len(t, captured[0].Embedding, llm.EmbeddingDimensions)
		assert.Equal(t, "Leave Policy", captured[0].Metadata["title"])
		policyRepo.AssertExpectations(t)
		replacer.AssertExpectations(t)
	})

	t.Run("empty content clears previous chunks", func(t *testing.T) {
		policyRepo := new(mockPolicyReader)
		replacer := new(mockChunkReplacer)

		policy := &domain.PolicyDocument{ID: "pol-2", OrgID: "org-1", Title: "Empty"}
		policyRepo.On("GetByIDForOrg", ctx, "pol-2", "org-1").Return(policy, nil)
		replacer.On("ReplaceChunks", ctx, "pol-2", mock.Anything).
			Run(func(args mock.Arguments) {
				assert.Empty(t, args.Get(2).([]domain.PolicyChunk))
			}).
			Return(nil)

		svc := newTestRAGService(t, policyRepo, replacer, nil)

		count, err := svc.Ingest(ctx, "pol-2", "org-1")

		require.NoError(t, err)
		assert.Equal(t, 0, count)
		replacer.AssertExpectations(t)
	})

	t.Run("wrong tenant returns not found", func(t *testing.T) {
		policyRepo := new(mockPolicyReader)
		policyRepo.On("GetByIDForOrg", ctx, "pol-1", "org-other").Return(nil, domain.ErrPolicyNotFound)

		svc := newTestRAGService(t, policyRepo, new(mockChunkReplacer), nil)

		_, err := svc.Ingest(ctx, "pol-1", "org-other")

		assert.ErrorIs(t, err, domain.ErrPolicyNotFound)
	})

	t.Run("replace failure surfaces error", func(t *testing.T) {
		policyRepo := new(mockPolicyReader)
		replacer := new(mockChunkReplacer)

		policy := &domain.PolicyDocument{ID: "pol-3", OrgID: "org-1", Title: "P", Content: "some content"}
		policyRepo.On("GetByIDForOrg", ctx, "pol-3", "org-1").Return(policy, nil)
		replacer.On("ReplaceChunks", ctx, "pol-3", mock.Anything).Return(errors.New("db down"))

		svc := newTestRAGService(t, policyRepo, replacer, nil)

		count, err := svc.Ingest(ctx, "pol-3", "org-1")

		assert.Error(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestRAGService_Query(t *testing.T) {
	ctx := context.Background()

	t.Run("uses default top k when not positive", func(t *testing.T) {
		searcher := new(mockChunkSearcher)
		results := []*domain.RetrievedChunk{
			{ID: "c-1", PolicyID: "pol-1", ChunkText: "twenty days", Similarity: 0.91},
		}
		searcher.On("Search", ctx, "org-1", mock.Anything, DefaultTopK).Return(results, nil)

		svc := newTestRAGService(t, new(mockPolicyReader), new(mockChunkReplacer), searcher)

		got, err := svc.Query(ctx, "how much annual leave do I get?", "org-1", 0)

		require.NoError(t, err)
		assert.Equal(t, results, got)
		searcher.AssertExpectations(t)
	})

	t.Run("passes explicit top k through", func(t *testing.T) {
		searcher := new(mockChunkSearcher)
		searcher.On("Search", ctx, "org-1", mock.Anything, 3).Return([]*domain.RetrievedChunk{}, nil)

		svc := newTestRAGService(t, new(mockPolicyReader), new(mockChunkReplacer), searcher)

		got, err := svc.Query(ctx, "remote work", "org-1", 3)

		require.NoError(t, err)
		assert.Empty(t, got)
		searcher.AssertExpectations(t)
	})
}

func TestRAGService_Reindex(t *testing.T) {
	ctx := context.Background()

	t.Run("sums chunk counts and skips failures", func(t *testing.T) {
		policyRepo := new(mockPolicyReader)
		replacer := new(mockChunkReplacer)

		good := &domain.PolicyDocument{ID: "pol-1", OrgID: "org-1", Title: "A", Content: "annual leave policy text"}
		bad := &domain.PolicyDocument{ID: "pol-2", OrgID: "org-1", Title: "B", Content: "sick leave policy text"}
		policyRepo.On("ListActiveByOrg", ctx, "org-1").Return([]*domain.PolicyDocument{good, bad}, nil)
		policyRepo.On("GetByIDForOrg", ctx, "pol-1", "org-1").Return(good, nil)
		policyRepo.On("GetByIDForOrg", ctx, "pol-2", "org-1").Return(nil, errors.New("gone"))

		replacer.On("ReplaceChunks", ctx, "pol-1", mock.Anything).Return(nil)

		svc := newTestRAGService(t, policyRepo, replacer, nil)

		total, err := svc.Reindex(ctx, "org-1")

		require.NoError(t, err)
		assert.Equal(t, 1, total)
		policyRepo.AssertExpectations(t)
	})

	t.Run("list failure aborts", func(t *testing.T) {
		policyRepo := new(mockPolicyReader)
		policyRepo.On("ListActiveByOrg", ctx, "org-1").Return(nil, errors.New("db down"))

		svc := newTestRAGService(t, policyRepo, new(mockChunkReplacer), nil)

		_, err := svc.Reindex(ctx, "org-1")

		assert.Error(t, err)
	})
}

func TestRAGService_IsMockEmbeddings(t *testing.T) {
	svc := newTestRAGService(t, new(mockPolicyReader), new(mockChunkReplacer), nil)
	assert.True(t, svc.IsMockEmbeddings())
}
