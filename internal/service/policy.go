package service

import (
	"context"
	"time"

	"github.com/hivehr/hivehr/internal/domain"
	"github.com/hivehr/hivehr/internal/pagination"
	"github.com/hivehr/hivehr/internal/telemetry"
)

// PolicyPageResult is one page of policy documents plus the cursor to the
// next page.
type PolicyPageResult struct {
	Items      []*domain.PolicyDocument
	NextCursor string
	HasMore    bool
}

type PolicyRepositoryInterface interface {
	Create(ctx context.Context, p *domain.PolicyDocument) error
	GetByIDForOrg(ctx context.Context, id, orgID string) (*domain.PolicyDocument, error)
	ListActiveByOrg(ctx context.Context, orgID string) ([]*domain.PolicyDocument, error)
	ListWithCursor(ctx context.Context, orgID string, cursor *pagination.Cursor, limit int) (*PolicyPageResult, error)
	Update(ctx context.Context, p *domain.PolicyDocument) error
	Deactivate(ctx context.Context, id, orgID string) error
}

type IngestJobEnqueuer interface {
	Create(ctx context.Context, job *domain.IngestJob) error
	HasPendingForPolicy(ctx context.Context, policyID string) (bool, error)
}

// PolicyService manages policy documents and enqueues their ingestion.
// Chunking and embedding happen asynchronously in the worker; a policy write
// only records what needs to be (re)indexed.
type PolicyService struct {
	policyRepo PolicyRepositoryInterface
	jobs       IngestJobEnqueuer
	uuidGen    UUIDGenerator
}

func NewPolicyService(policyRepo PolicyRepositoryInterface, jobs IngestJobEnqueuer, uuidGen UUIDGenerator) *PolicyService {
	return &PolicyService{
		policyRepo: policyRepo,
		jobs:       jobs,
		uuidGen:    uuidGen,
	}
}

type CreatePolicyInput struct {
	OrgID    string
	Title    string
	Content  string
	Category string
}

func (s *PolicyService) Create(ctx context.Context, input CreatePolicyInput) (*domain.PolicyDocument, error) {
	ctx, span := telemetry.StartSpan(ctx, "PolicyService.Create", telemetry.SpanAttributes{
		OrgID: input.OrgID,
	})
	defer span.End()

	if input.Title == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "policy title is required")
	}
	if input.Content == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "policy content is required")
	}

	policy := domain.NewPolicyDocument(
		s.uuidGen.NewString(),
		input.OrgID,
		input.Title,
		input.Content,
		input.Category,
		time.Now().UTC(),
	)

	if err := domain.ValidatePolicyDocument(policy); err != nil {
		span.SetError(err)
		return nil, err
	}

	if err := s.policyRepo.Create(ctx, policy); err != nil {
		span.SetError(err)
		return nil, err
	}

	if _, err := s.EnqueueIngest(ctx, policy.ID, policy.OrgID); err != nil {
		span.SetError(err)
		return nil, err
	}

	return policy, nil
}

func (s *PolicyService) Get(ctx context.Context, id, orgID string) (*domain.PolicyDocument, error) {
	return s.policyRepo.GetByIDForOrg(ctx, id, orgID)
}

type ListPoliciesInput struct {
	OrgID  string
	Cursor string
	Limit  int
}

func (s *PolicyService) List(ctx context.Context, input ListPoliciesInput) (*PolicyPageResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "PolicyService.List", telemetry.SpanAttributes{
		OrgID: input.OrgID,
	})
	defer span.End()

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid cursor")
	}

	result, err := s.policyRepo.ListWithCursor(ctx, input.OrgID, cursor, input.Limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return result, nil
}

type UpdatePolicyInput struct {
	ID       string
	OrgID    string
	Title    string
	Content  string
	Category string
	IsActive *bool
}

// Update rewrites a policy and enqueues re-ingestion. Content changes only
// reach retrieval once the worker processes the job.
func (s *PolicyService) Update(ctx context.Context, input UpdatePolicyInput) (*domain.PolicyDocument, error) {
	ctx, span := telemetry.StartSpan(ctx, "PolicyService.Update", telemetry.SpanAttributes{
		OrgID:    input.OrgID,
		PolicyID: input.ID,
	})
	defer span.End()

	policy, err := s.policyRepo.GetByIDForOrg(ctx, input.ID, input.OrgID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if input.Title != "" {
		policy.Title = input.Title
	}
	if input.Content != "" {
		policy.Content = input.Content
	}
	if input.Category != "" {
		policy.Category = input.Category
	}
	if input.IsActive != nil {
		policy.IsActive = *input.IsActive
	}
	policy.UpdatedAt = time.Now().UTC()

	if err := s.policyRepo.Update(ctx, policy); err != nil {
		span.SetError(err)
		return nil, err
	}

	if _, err := s.EnqueueIngest(ctx, policy.ID, policy.OrgID); err != nil {
		span.SetError(err)
		return nil, err
	}

	return policy, nil
}

// Deactivate soft-deletes a policy. Its chunks drop out at the next reindex.
func (s *PolicyService) Deactivate(ctx context.Context, id, orgID string) error {
	ctx, span := telemetry.StartSpan(ctx, "PolicyService.Deactivate", telemetry.SpanAttributes{
		OrgID:    orgID,
		PolicyID: id,
	})
	defer span.End()

	if err := s.policyRepo.Deactivate(ctx, id, orgID); err != nil {
		span.SetError(err)
		return err
	}
	return nil
}

// EnqueueIngest records that a policy needs (re)indexing. When an
// unprocessed job already covers the policy the call is a no-op, so a burst
// of edits yields one ingestion.
func (s *PolicyService) EnqueueIngest(ctx context.Context, policyID, orgID string) (bool, error) {
	pending, err := s.jobs.HasPendingForPolicy(ctx, policyID)
	if err != nil {
		return false, err
	}
	if pending {
		return false, nil
	}

	job := domain.NewIngestJob(s.uuidGen.NewString(), policyID, orgID, time.Now().UTC())
	if err := s.jobs.Create(ctx, job); err != nil {
		return false, err
	}
	return true, nil
}

// ReindexOrg enqueues ingestion for every active policy in the organization.
// Returns how many jobs were actually enqueued.
func (s *PolicyService) ReindexOrg(ctx context.Context, orgID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "PolicyService.ReindexOrg", telemetry.SpanAttributes{
		OrgID: orgID,
	})
	defer span.End()

	policies, err := s.policyRepo.ListActiveByOrg(ctx, orgID)
	if err != nil {
		span.SetError(err)
		return 0, err
	}

	enqueued := 0
	for _, policy := range policies {
		ok, err := s.EnqueueIngest(ctx, policy.ID, orgID)
		if err != nil {
			span.SetError(err)
			return enqueued, err
		}
		if ok {
			enqueued++
		}
	}
	return enqueued, nil
}
