package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivehr/hivehr/internal/domain"
)

// LeaveBalanceRepository handles persistence of leave allowances.
type LeaveBalanceRepository struct {
	db dbtx
}

func NewLeaveBalanceRepository(pool *pgxpool.Pool) *LeaveBalanceRepository {
	return &LeaveBalanceRepository{db: pool}
}

// ListForEmployee returns the employee's balances, optionally filtered to
// one leave type.
func (r *LeaveBalanceRepository) ListForEmployee(ctx context.Context, orgID, employeeID string, leaveType *domain.LeaveType) ([]*domain.LeaveBalance, error) {
	query := `SELECT id, org_id, employee_id, leave_type, total_days, used_days, year
	          FROM leave_balances
	          WHERE org_id = $1 AND employee_id = $2`
	args := []any{orgID, employeeID}
	if leaveType != nil {
		query += ` AND leave_type = $3`
		args = append(args, *leaveType)
	}
	query += ` ORDER BY leave_type ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []*domain.LeaveBalance
	for rows.Next() {
		var b domain.LeaveBalance
		if err := rows.Scan(&b.ID, &b.OrgID, &b.EmployeeID, &b.LeaveType, &b.TotalDays, &b.UsedDays, &b.Year); err != nil {
			return nil, err
		}
		balances = append(balances, &b)
	}
	return balances, rows.Err()
}

// Upsert creates or updates the balance row for one employee, type and year.
func (r *LeaveBalanceRepository) Upsert(ctx context.Context, b *domain.LeaveBalance) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO leave_balances (id, org_id, employee_id, leave_type, total_days, used_days, year)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (employee_id, leave_type, year)
		 DO UPDATE SET total_days = EXCLUDED.total_days, used_days = EXCLUDED.used_days`,
		b.ID, b.OrgID, b.EmployeeID, b.LeaveType, b.TotalDays, b.UsedDays, b.Year,
	)
	return err
}

// LeaveRequestRepository handles persistence of leave requests.
type LeaveRequestRepository struct {
	db dbtx
}

func NewLeaveRequestRepository(pool *pgxpool.Pool) *LeaveRequestRepository {
	return &LeaveRequestRepository{db: pool}
}

func (r *LeaveRequestRepository) Create(ctx context.Context, req *domain.LeaveRequest) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO leave_requests (id, org_id, employee_id, leave_type, start_date, end_date, status, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		req.ID, req.OrgID, req.EmployeeID, req.LeaveType, req.StartDate, req.EndDate,
		req.Status, nullableString(req.Reason), req.CreatedAt,
	)
	return err
}

func (r *LeaveRequestRepository) ListForEmployee(ctx context.Context, orgID, employeeID string) ([]*domain.LeaveRequest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, org_id, employee_id, leave_type, start_date, end_date, status, reason, created_at
		 FROM leave_requests
		 WHERE org_id = $1 AND employee_id = $2
		 ORDER BY created_at DESC`,
		orgID, employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.LeaveRequest
	for rows.Next() {
		var req domain.LeaveRequest
		var reason *string
		if err := rows.Scan(&req.ID, &req.OrgID, &req.EmployeeID, &req.LeaveType,
			&req.StartDate, &req.EndDate, &req.Status, &reason, &req.CreatedAt); err != nil {
			return nil, err
		}
		if reason != nil {
			req.Reason = *reason
		}
		requests = append(requests, &req)
	}
	return requests, rows.Err()
}

// UpdateStatus resolves a pending request.
func (r *LeaveRequestRepository) UpdateStatus(ctx context.Context, id, orgID string, status domain.LeaveRequestStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE leave_requests SET status = $1 WHERE id = $2 AND org_id = $3`,
		status, id, orgID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.NewDomainError(domain.ErrCodeNotFound, "leave request not found")
	}
	return nil
}
