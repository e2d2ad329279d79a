package domain

import (
	"fmt"
	"time"
)

// PolicyDocument is an organization-scoped HR policy text that feeds the
// retrieval pipeline. Deactivation is a soft flag; rows are never physically
// deleted while chunks still reference them.
type PolicyDocument struct {
	ID        string
	OrgID     string
	Title     string
	Content   string
	Category  string // optional
	IsActive  bool
	UpdatedAt time.Time
}

// NewPolicyDocument creates a new active PolicyDocument instance
func NewPolicyDocument(id, orgID, title, content, category string, updatedAt time.Time) *PolicyDocument {
	return &PolicyDocument{
		ID:        id,
		OrgID:     orgID,
		Title:     title,
		Content:   content,
		Category:  category,
		IsActive:  true,
		UpdatedAt: updatedAt,
	}
}

// ValidatePolicyDocument validates a PolicyDocument instance
func ValidatePolicyDocument(p *PolicyDocument) error {
	if p == nil {
		return fmt.Errorf("policy document cannot be nil")
	}
	if p.ID == "" {
		return fmt.Errorf("policy document ID is required")
	}
	if p.OrgID == "" {
		return fmt.Errorf("policy document OrgID is required")
	}
	if p.Title == "" {
		return fmt.Errorf("policy document title is required")
	}
	return nil
}
