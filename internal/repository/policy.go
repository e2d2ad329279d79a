package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivehr/hivehr/internal/domain"
	"github.com/hivehr/hivehr/internal/pagination"
	"github.com/hivehr/hivehr/internal/service"
)

// PolicyRepository handles persistence of policy documents.
type PolicyRepository struct {
	db dbtx
}

func NewPolicyRepository(pool *pgxpool.Pool) *PolicyRepository {
	return &PolicyRepository{db: pool}
}

func NewPolicyRepositoryWithTx(tx dbtx) *PolicyRepository {
	return &PolicyRepository{db: tx}
}

const policyColumns = `id, org_id, title, content, category, is_active, updated_at`

func (r *PolicyRepository) Create(ctx context.Context, p *domain.PolicyDocument) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO policy_documents (id, org_id, title, content, category, is_active, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.OrgID, p.Title, p.Content, nullableString(p.Category), p.IsActive, p.UpdatedAt,
	)
	return err
}

func (r *PolicyRepository) GetByIDForOrg(ctx context.Context, id, orgID string) (*domain.PolicyDocument, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+policyColumns+` FROM policy_documents WHERE id = $1 AND org_id = $2`,
		id, orgID,
	)
	return scanPolicy(row)
}

// GetActiveByIDForOrg is GetByIDForOrg restricted to active policies; an
// inactive policy reads as not found.
func (r *PolicyRepository) GetActiveByIDForOrg(ctx context.Context, id, orgID string) (*domain.PolicyDocument, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+policyColumns+` FROM policy_documents WHERE id = $1 AND org_id = $2 AND is_active = TRUE`,
		id, orgID,
	)
	return scanPolicy(row)
}

func (r *PolicyRepository) ListActiveByOrg(ctx context.Context, orgID string) ([]*domain.PolicyDocument, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+policyColumns+` FROM policy_documents
		 WHERE org_id = $1 AND is_active = TRUE ORDER BY updated_at DESC`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPolicyRows(rows)
}

func (r *PolicyRepository) ListWithCursor(ctx context.Context, orgID string, cursor *pagination.Cursor, limit int) (*service.PolicyPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+policyColumns+` FROM policy_documents
			 WHERE org_id = $1 AND (updated_at, id) < ($2, $3)
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $4`,
			orgID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+policyColumns+` FROM policy_documents
			 WHERE org_id = $1
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $2`,
			orgID, limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	policies, err := scanPolicyRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(policies) > limit
	if hasMore {
		policies = policies[:limit]
	}

	var nextCursor string
	if hasMore && len(policies) > 0 {
		last := policies[len(policies)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.UpdatedAt)
	}

	return &service.PolicyPageResult{
		Items:      policies,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *PolicyRepository) Update(ctx context.Context, p *domain.PolicyDocument) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE policy_documents SET title = $1, content = $2, category = $3, is_active = $4, updated_at = $5
		 WHERE id = $6 AND org_id = $7`,
		p.Title, p.Content, nullableString(p.Category), p.IsActive, p.UpdatedAt, p.ID, p.OrgID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPolicyNotFound
	}
	return nil
}

// Deactivate soft-disables a policy. Its chunks stay in place until the next
// reindex; no physical delete happens while chunks reference it.
func (r *PolicyRepository) Deactivate(ctx context.Context, id, orgID string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE policy_documents SET is_active = FALSE WHERE id = $1 AND org_id = $2`,
		id, orgID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPolicyNotFound
	}
	return nil
}

func scanPolicy(row pgx.Row) (*domain.PolicyDocument, error) {
	var p domain.PolicyDocument
	var category *string
	if err := row.Scan(&p.ID, &p.OrgID, &p.Title, &p.Content, &category, &p.IsActive, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPolicyNotFound
		}
		return nil, err
	}
	if category != nil {
		p.Category = *category
	}
	return &p, nil
}

func scanPolicyRows(rows pgx.Rows) ([]*domain.PolicyDocument, error) {
	var results []*domain.PolicyDocument
	for rows.Next() {
		var p domain.PolicyDocument
		var category *string
		if err := rows.Scan(&p.ID, &p.OrgID, &p.Title, &p.Content, &category, &p.IsActive, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if category != nil {
			p.Category = *category
		}
		results = append(results, &p)
	}
	return results, rows.Err()
}
