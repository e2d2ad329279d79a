package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivehr/hivehr/internal/domain"
)

// DocumentRepository handles persistence of generated document records.
type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, org_id, employee_id, document_type, title, file_path, from_template, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.OrgID, d.EmployeeID, d.DocumentType, d.Title, nullableString(d.FilePath), d.FromTemplate, d.CreatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByIDForOrg(ctx context.Context, id, orgID string) (*domain.Document, error) {
	var d domain.Document
	var filePath *string
	err := r.db.QueryRow(ctx,
		`SELECT id, org_id, employee_id, document_type, title, file_path, from_template, created_at
		 FROM documents WHERE id = $1 AND org_id = $2`,
		id, orgID,
	).Scan(&d.ID, &d.OrgID, &d.EmployeeID, &d.DocumentType, &d.Title, &filePath, &d.FromTemplate, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewDomainError(domain.ErrCodeNotFound, "document not found")
		}
		return nil, err
	}
	if filePath != nil {
		d.FilePath = *filePath
	}
	return &d, nil
}

func (r *DocumentRepository) ListForEmployee(ctx context.Context, orgID, employeeID string) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, org_id, employee_id, document_type, title, file_path, from_template, created_at
		 FROM documents
		 WHERE org_id = $1 AND employee_id = $2
		 ORDER BY created_at DESC`,
		orgID, employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []*domain.Document
	for rows.Next() {
		var d domain.Document
		var filePath *string
		if err := rows.Scan(&d.ID, &d.OrgID, &d.EmployeeID, &d.DocumentType, &d.Title, &filePath, &d.FromTemplate, &d.CreatedAt); err != nil {
			return nil, err
		}
		if filePath != nil {
			d.FilePath = *filePath
		}
		documents = append(documents, &d)
	}
	return documents, rows.Err()
}
