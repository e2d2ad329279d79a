package domain

import (
	"fmt"
	"time"
)

// APIKey represents an API key bound to one employee identity within an
// organization. Identity scoping for every request comes from this record,
// never from the request payload.
type APIKey struct {
	ID         string
	OrgID      string
	EmployeeID string
	Name       string
	KeyHash    string // Never store plaintext keys
	CreatedAt  time.Time
	RevokedAt  *time.Time
}

// NewAPIKey creates a new APIKey instance
func NewAPIKey(id, orgID, employeeID, name, keyHash string, createdAt time.Time) *APIKey {
	return &APIKey{
		ID:         id,
		OrgID:      orgID,
		EmployeeID: employeeID,
		Name:       name,
		KeyHash:    keyHash,
		CreatedAt:  createdAt,
	}
}

// IsRevoked reports whether the key has been revoked
func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}

// ValidateAPIKey validates an APIKey instance
func ValidateAPIKey(k *APIKey) error {
	if k == nil {
		return fmt.Errorf("api key cannot be nil")
	}
	if k.ID == "" {
		return fmt.Errorf("api key ID is required")
	}
	if k.OrgID == "" {
		return fmt.Errorf("api key OrgID is required")
	}
	if k.EmployeeID == "" {
		return fmt.Errorf("api key EmployeeID is required")
	}
	if k.Name == "" {
		return fmt.Errorf("api key Name is required")
	}
	if k.KeyHash == "" {
		return fmt.Errorf("api key KeyHash is required")
	}
	return nil
}
