package domain

import "time"

// DocumentType classifies a generated HR document
type DocumentType string

const (
	DocumentTypeContract          DocumentType = "contract"
	DocumentTypeResignationLetter DocumentType = "resignation_letter"
	DocumentTypeExperienceLetter  DocumentType = "experience_letter"
	DocumentTypeSalaryCertificate DocumentType = "salary_certificate"
	DocumentTypeNOC               DocumentType = "noc"
)

// DocumentTitle returns the display title for a document type. Unknown types
// get a generic title rather than an error so the agent can still record them.
func DocumentTitle(t DocumentType) string {
	switch t {
	case DocumentTypeContract:
		return "Employment Contract"
	case DocumentTypeResignationLetter:
		return "Resignation Letter"
	case DocumentTypeExperienceLetter:
		return "Experience Letter"
	case DocumentTypeSalaryCertificate:
		return "Salary Certificate"
	case DocumentTypeNOC:
		return "No Objection Certificate"
	default:
		return "Generated " + string(t)
	}
}

// Document is the metadata record for a generated HR document. FilePath is
// empty when no renderer/storage was configured at generation time.
type Document struct {
	ID            string
	OrgID         string
	EmployeeID    string
	DocumentType  string
	Title         string
	FilePath      string
	FromTemplate  bool
	CreatedAt     time.Time
}
