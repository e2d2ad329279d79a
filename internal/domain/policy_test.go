package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicyDocument(t *testing.T) {
	now := time.Now()
	p := NewPolicyDocument("p1", "org1", "Remote Work Policy", "Employees may work remotely...", "benefits", now)

	require.NotNil(t, p)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "org1", p.OrgID)
	assert.Equal(t, "Remote Work Policy", p.Title)
	assert.Equal(t, "benefits", p.Category)
	assert.True(t, p.IsActive)
	assert.Equal(t, now, p.UpdatedAt)
}

func TestValidatePolicyDocument(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		policy  *PolicyDocument
		wantErr bool
	}{
		{"Valid", NewPolicyDocument("p1", "org1", "Title", "content", "", now), false},
		{"Nil", nil, true},
		{"MissingID", &PolicyDocument{OrgID: "org1", Title: "Title"}, true},
		{"MissingOrgID", &PolicyDocument{ID: "p1", Title: "Title"}, true},
		{"MissingTitle", &PolicyDocument{ID: "p1", OrgID: "org1"}, true},
		{"EmptyContentIsValid", NewPolicyDocument("p1", "org1", "Title", "", "", now), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePolicyDocument(tt.policy)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
