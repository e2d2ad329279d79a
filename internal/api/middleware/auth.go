package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hivehr/hivehr/internal/api"
	"github.com/hivehr/hivehr/internal/domain"
)

type contextKey string

const (
	OrgIDKey      contextKey = "org_id"
	EmployeeIDKey contextKey = "employee_id"
)

// AuthValidator resolves a bearer token to the API key record that carries
// the request identity.
type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (*domain.APIKey, error)
}

// APIKeyAuth authenticates requests and stashes the key's organization and
// employee identity in the request context. Identity never comes from the
// request payload.
func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			key, err := validator.ValidateAPIKey(r.Context(), token)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			ctx := context.WithValue(r.Context(), OrgIDKey, key.OrgID)
			ctx = context.WithValue(ctx, EmployeeIDKey, key.EmployeeID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOrgID returns the authenticated organization ID from context.
func GetOrgID(ctx context.Context) string {
	orgID, _ := ctx.Value(OrgIDKey).(string)
	return orgID
}

// GetEmployeeID returns the authenticated employee ID from context.
func GetEmployeeID(ctx context.Context) string {
	employeeID, _ := ctx.Value(EmployeeIDKey).(string)
	return employeeID
}
