package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hivehr/hivehr/internal/domain"
	"github.com/hivehr/hivehr/internal/pagination"
)

type mockPolicyRepository struct {
	mock.Mock
}

func (m *mockPolicyRepository) Create(ctx context.Context, p *domain.PolicyDocument) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPolicyRepository) GetByIDForOrg(ctx context.Context, id, orgID string) (*domain.PolicyDocument, error) {
	args := m.Called(ctx, id, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PolicyDocument), args.Error(1)
}

func (m *mockPolicyRepository) ListActiveByOrg(ctx context.Context, orgID string) ([]*domain.PolicyDocument, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PolicyDocument), args.Error(1)
}

func (m *mockPolicyRepository) ListWithCursor(ctx context.Context, orgID string, cursor *pagination.Cursor, limit int) (*PolicyPageResult, error) {
	args := m.Called(ctx, orgID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PolicyPageResult), args.Error(1)
}

func (m *mockPolicyRepository) Update(ctx context.Context, p *domain.PolicyDocument) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPolicyRepository) Deactivate(ctx context.Context, id, orgID string) error {
	return m.Called(ctx, id, orgID).Error(0)
}

type mockIngestJobEnqueuer struct {
	mock.Mock
}

func (m *mockIngestJobEnqueuer) Create(ctx context.Context, job *domain.IngestJob) error {
	return m.Called(ctx, job).Error(0)
}

func (m *mockIngestJobEnqueuer) HasPendingForPolicy(ctx context.Context, policyID string) (bool, error) {
	args := m.Called(ctx, policyID)
	return args.Bool(0), args.Error(1)
}

func newTestPolicyService(repo *mockPolicyRepository, jobs *mockIngestJobEnqueuer) *PolicyService {
	return NewPolicyService(repo, jobs, &fixedUUIDGenerator{})
}

func TestPolicyService_Create_EnqueuesIngest(t *testing.T) {
	repo := new(mockPolicyRepository)
	jobs := new(mockIngestJobEnqueuer)
	svc := newTestPolicyService(repo, jobs)

	var createdID string
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.PolicyDocument) bool {
		createdID = p.ID
		return p.OrgID == "org-1" && p.Title == "Leave Policy" && p.IsActive
	})).Return(nil)
	jobs.On("HasPendingForPolicy", mock.Anything, mock.Anything).Return(false, nil)
	jobs.On("Create", mock.Anything, mock.MatchedBy(func(j *domain.IngestJob) bool {
		return j.PolicyID == createdID && j.OrgID == "org-1" && j.Status == domain.IngestJobStatusPending
	})).Return(nil)

	policy, err := svc.Create(context.Background(), CreatePolicyInput{
		OrgID:   "org-1",
		Title:   "Leave Policy",
		Content: "Employees accrue 20 days per year.",
	})
	require.NoError(t, err)
	assert.True(t, policy.IsActive)
	jobs.AssertExpectations(t)
}

func TestPolicyService_Create_MissingFields(t *testing.T) {
	svc := newTestPolicyService(new(mockPolicyRepository), new(mockIngestJobEnqueuer))

	_, err := svc.Create(context.Background(), CreatePolicyInput{OrgID: "org-1", Content: "body"})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreatePolicyInput{OrgID: "org-1", Title: "Leave Policy"})
	require.Error(t, err)
}

func TestPolicyService_Update_DeduplicatesIngest(t *testing.T) {
	repo := new(mockPolicyRepository)
	jobs := new(mockIngestJobEnqueuer)
	svc := newTestPolicyService(repo, jobs)

	existing := domain.NewPolicyDocument("pol-1", "org-1", "Leave Policy", "old body", "leave", time.Now().UTC())
	repo.On("GetByIDForOrg", mock.Anything, "pol-1", "org-1").Return(existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.PolicyDocument) bool {
		return p.Content == "new body" && p.Title == "Leave Policy"
	})).Return(nil)

	// A job is already waiting, so no second one is enqueued.
	jobs.On("HasPendingForPolicy", mock.Anything, "pol-1").Return(true, nil)

	updated, err := svc.Update(context.Background(), UpdatePolicyInput{
		ID:      "pol-1",
		OrgID:   "org-1",
		Content: "new body",
	})
	require.NoError(t, err)
	assert.Equal(t, "new body", updated.Content)
	jobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPolicyService_Update_NotFound(t *testing.T) {
	repo := new(mockPolicyRepository)
	jobs := new(mockIngestJobEnqueuer)
	svc := newTestPolicyService(repo, jobs)

	repo.On("GetByIDForOrg", mock.Anything, "pol-x", "org-1").Return(nil, domain.ErrPolicyNotFound)

	_, err := svc.Update(context.Background(), UpdatePolicyInput{ID: "pol-x", OrgID: "org-1", Content: "body"})
	assert.ErrorIs(t, err, domain.ErrPolicyNotFound)
}

func TestPolicyService_List_InvalidCursor(t *testing.T) {
	svc := newTestPolicyService(new(mockPolicyRepository), new(mockIngestJobEnqueuer))

	_, err := svc.List(context.Background(), ListPoliciesInput{OrgID: "org-1", Cursor: "%%%not-base64%%%"})
	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestPolicyService_ReindexOrg(t *testing.T) {
	repo := new(mockPolicyRepository)
	jobs := new(mockIngestJobEnqueuer)
	svc := newTestPolicyService(repo, jobs)

	now := time.Now().UTC()
	repo.On("ListActiveByOrg", mock.Anything, "org-1").Return([]*domain.PolicyDocument{
		domain.NewPolicyDocument("pol-1", "org-1", "A", "a", "", now),
		domain.NewPolicyDocument("pol-2", "org-1", "B", "b", "", now),
		domain.NewPolicyDocument("pol-3", "org-1", "C", "c", "", now),
	}, nil)

	// pol-2 already has a job waiting.
	jobs.On("HasPendingForPolicy", mock.Anything, "pol-1").Return(false, nil)
	jobs.On("HasPendingForPolicy", mock.Anything, "pol-2").Return(true, nil)
	jobs.On("HasPendingForPolicy", mock.Anything, "pol-3").Return(false, nil)
	jobs.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()

	enqueued, err := svc.ReindexOrg(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, 2, enqueued)
	jobs.AssertExpectations(t)
}
