package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/hivehr/hivehr/internal/domain"
)

// ObjectUploader is the storage surface the renderer needs.
type ObjectUploader interface {
	PutObject(ctx context.Context, key string, contentType string, body []byte) error
}

// DocumentGenerator renders generated HR documents to PDF and uploads them
// to object storage. It implements DocumentRenderer.
type DocumentGenerator struct {
	uploader ObjectUploader
	orgName  func(ctx context.Context, orgID string) string
	now      func() time.Time
}

// NewDocumentGenerator creates a new DocumentGenerator instance. orgName
// resolves an organization's display name for the letterhead; it may return
// an empty string.
func NewDocumentGenerator(uploader ObjectUploader, orgName func(ctx context.Context, orgID string) string) *DocumentGenerator {
	return &DocumentGenerator{
		uploader: uploader,
		orgName:  orgName,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Render produces the PDF for a document record, uploads it and returns the
// storage key.
func (g *DocumentGenerator) Render(ctx context.Context, doc *domain.Document, employee *domain.Employee) (string, error) {
	if g.uploader == nil {
		return "", domain.ErrStorageNotConfigured
	}

	body, err := g.renderPDF(ctx, doc, employee)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to render document", err)
	}

	key := fmt.Sprintf("documents/%s/%s.pdf", doc.OrgID, doc.ID)
	if err := g.uploader.PutObject(ctx, key, "application/pdf", body); err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to upload document", err)
	}
	return key, nil
}

func (g *DocumentGenerator) renderPDF(ctx context.Context, doc *domain.Document, employee *domain.Employee) ([]byte, error) {
	orgName := "Your Organization"
	if g.orgName != nil {
		if name := g.orgName(ctx, doc.OrgID); name != "" {
			orgName = name
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, orgName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 10, doc.Title, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, "Date: "+g.now().Format("January 2, 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, para := range documentBody(doc, employee, orgName) {
		pdf.MultiCell(0, 6, para, "", "L", false)
		pdf.Ln(3)
	}

	pdf.Ln(10)
	pdf.CellFormat(0, 6, "Sincerely,", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Human Resources, "+orgName, "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func documentBody(doc *domain.Document, employee *domain.Employee, orgName string) []string {
	name := employee.FullName
	position := employee.Position
	if position == "" {
		position = "employee"
	}
	hired := "their hire date"
	if employee.HireDate != nil {
		hired = employee.HireDate.Format("January 2, 2006")
	}

	switch domain.DocumentType(doc.DocumentType) {
	case domain.DocumentTypeExperienceLetter:
		return []string{
			fmt.Sprintf("This is to certify that %s has been employed with %s as %s in the %s department since %s.", name, orgName, position, employee.Department, hired),
			fmt.Sprintf("During their tenure, %s has carried out their duties diligently and professionally.", name),
			"This letter is issued at the employee's request.",
		}
	case domain.DocumentTypeSalaryCertificate:
		return []string{
			fmt.Sprintf("This is to certify that %s (employee code %s) is a full-time %s with %s.", name, employee.EmployeeCode, position, orgName),
			"Detailed compensation figures are available from the HR department on request.",
			"This certificate is issued at the employee's request for official purposes.",
		}
	case domain.DocumentTypeResignationLetter:
		return []string{
			fmt.Sprintf("This letter acknowledges the resignation of %s from the position of %s at %s.", name, position, orgName),
			"The applicable notice period and handover requirements are governed by the employment contract and company policy.",
		}
	case domain.DocumentTypeNOC:
		return []string{
			fmt.Sprintf("%s has no objection to %s (employee code %s, %s) undertaking the activity for which this certificate was requested.", orgName, name, employee.EmployeeCode, position),
			"This certificate does not alter the terms of employment.",
		}
	case domain.DocumentTypeContract:
		return []string{
			fmt.Sprintf("This document records the employment of %s as %s in the %s department of %s, effective %s.", name, position, employee.Department, orgName, hired),
			"Full terms and conditions are set out in the signed employment agreement held by HR.",
		}
	default:
		return []string{
			fmt.Sprintf("This document was generated for %s (%s) at %s.", name, position, orgName),
		}
	}
}
