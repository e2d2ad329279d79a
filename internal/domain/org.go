package domain

import (
	"fmt"
	"time"
)

// AIConfig is an organization's provider configuration, stored as JSONB on
// the organizations row. Empty fields fall back to process-level defaults.
type AIConfig struct {
	ChatProvider      string `json:"chat_provider,omitempty"`
	ChatModel         string `json:"chat_model,omitempty"`
	EmbeddingProvider string `json:"embedding_provider,omitempty"`
	EmbeddingModel    string `json:"embedding_model,omitempty"`
	APIKey            string `json:"api_key,omitempty"`
	BaseURL           string `json:"base_url,omitempty"`
}

// Organization represents a tenant in the system
type Organization struct {
	ID        string
	Name      string
	AIConfig  *AIConfig // nil means use process defaults
	CreatedAt time.Time
}

// NewOrganization creates a new Organization instance
func NewOrganization(id, name string, createdAt time.Time) *Organization {
	return &Organization{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt,
	}
}

// ValidateOrganization validates an Organization instance
func ValidateOrganization(o *Organization) error {
	if o == nil {
		return fmt.Errorf("organization cannot be nil")
	}

	if o.ID == "" {
		return fmt.Errorf("organization ID is required")
	}

	if o.Name == "" {
		return fmt.Errorf("organization Name is required")
	}

	return nil
}
