package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivehr/hivehr/internal/domain"
)

// EmployeeRepository handles persistence of employee records.
type EmployeeRepository struct {
	db dbtx
}

func NewEmployeeRepository(pool *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{db: pool}
}

const employeeColumns = `id, org_id, employee_code, full_name, email, department, position, hire_date, status, created_at`

func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO employees (id, org_id, employee_code, full_name, email, department, position, hire_date, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.OrgID, e.EmployeeCode, e.FullName, e.Email,
		nullableString(e.Department), nullableString(e.Position), e.HireDate, e.Status, e.CreatedAt,
	)
	return err
}

func (r *EmployeeRepository) GetByIDForOrg(ctx context.Context, id, orgID string) (*domain.Employee, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = $1 AND org_id = $2`,
		id, orgID,
	)
	return scanEmployee(row)
}

func (r *EmployeeRepository) GetByEmailForOrg(ctx context.Context, email, orgID string) (*domain.Employee, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE email = $1 AND org_id = $2`,
		email, orgID,
	)
	return scanEmployee(row)
}

func (r *EmployeeRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.Employee, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE org_id = $1 ORDER BY full_name ASC`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*domain.Employee
	for rows.Next() {
		e, err := scanEmployeeFromRows(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var e domain.Employee
	var department, position *string
	if err := row.Scan(&e.ID, &e.OrgID, &e.EmployeeCode, &e.FullName, &e.Email,
		&department, &position, &e.HireDate, &e.Status, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	if department != nil {
		e.Department = *department
	}
	if position != nil {
		e.Position = *position
	}
	return &e, nil
}

func scanEmployeeFromRows(rows pgx.Rows) (*domain.Employee, error) {
	var e domain.Employee
	var department, position *string
	if err := rows.Scan(&e.ID, &e.OrgID, &e.EmployeeCode, &e.FullName, &e.Email,
		&department, &position, &e.HireDate, &e.Status, &e.CreatedAt); err != nil {
		return nil, err
	}
	if department != nil {
		e.Department = *department
	}
	if position != nil {
		e.Position = *position
	}
	return &e, nil
}
