package service

import (
	"context"

	"github.com/hivehr/hivehr/internal/domain"
)

// OrganizationGetter loads organizations for ingestion dispatch.
type OrganizationGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
}

// IngestDispatcher routes an ingestion request to the owning organization's
// pipeline. The background worker uses it so each job runs with the
// organization's own embedding configuration.
type IngestDispatcher struct {
	orgs     OrganizationGetter
	registry *Registry
}

func NewIngestDispatcher(orgs OrganizationGetter, registry *Registry) *IngestDispatcher {
	return &IngestDispatcher{orgs: orgs, registry: registry}
}

// Ingest chunks and embeds one policy document through the organization's
// pipeline.
func (d *IngestDispatcher) Ingest(ctx context.Context, policyID, orgID string) (int, error) {
	org, err := d.orgs.GetByID(ctx, orgID)
	if err != nil {
		return 0, err
	}

	bundle, err := d.registry.ForOrganization(org)
	if err != nil {
		return 0, err
	}

	return bundle.RAG.Ingest(ctx, policyID, orgID)
}
