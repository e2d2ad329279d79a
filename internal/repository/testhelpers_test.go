//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/hivehr/hivehr/internal/domain"
	"github.com/hivehr/hivehr/internal/testutil"
)

func newTestDB(t *testing.T) (context.Context, *pgxpool.Pool) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { _ = pc.Terminate(ctx) })

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	t.Cleanup(pool.Close)

	return ctx, pool
}

func seedOrg(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name string) *domain.Organization {
	t.Helper()
	org := &domain.Organization{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, NewOrgRepository(pool).Create(ctx, org))
	return org
}

func seedEmployee(ctx context.Context, t *testing.T, pool *pgxpool.Pool, orgID string) *domain.Employee {
	t.Helper()
	e := &domain.Employee{
		ID:           uuid.NewString(),
		OrgID:        orgID,
		EmployeeCode: "E-" + uuid.NewString()[:8],
		FullName:     "Test Employee",
		Email:        uuid.NewString()[:8] + "@example.com",
		Department:   "Engineering",
		Position:     "Engineer",
		Status:       domain.EmployeeStatusActive,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, NewEmployeeRepository(pool).Create(ctx, e))
	return e
}

func seedPolicy(ctx context.Context, t *testing.T, pool *pgxpool.Pool, orgID, title string) *domain.PolicyDocument {
	t.Helper()
	p := &domain.PolicyDocument{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		Title:     title,
		Content:   "Employees accrue twenty days of annual leave per year.",
		Category:  "leave",
		IsActive:  true,
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, NewPolicyRepository(pool).Create(ctx, p))
	return p
}

func testVector(fill float32) []float32 {
	v := make([]float32, 1536)
	for i := range v {
		v[i] = fill
	}
	return v
}
