package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hivehr/hivehr/internal/domain"
)

type mockOrgRepository struct {
	mock.Mock
}

func (m *mockOrgRepository) Create(ctx context.Context, org *domain.Organization) error {
	return m.Called(ctx, org).Error(0)
}

func (m *mockOrgRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *mockOrgRepository) GetByName(ctx context.Context, name string) (*domain.Organization, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *mockOrgRepository) List(ctx context.Context) ([]*domain.Organization, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Organization), args.Error(1)
}

func (m *mockOrgRepository) Update(ctx context.Context, org *domain.Organization) error {
	return m.Called(ctx, org).Error(0)
}

func (m *mockOrgRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockAPIKeyRepository struct {
	mock.Mock
}

func (m *mockAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockAPIKeyRepository) GetByID(ctx context.Context, id string) (*domain.APIKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepository) GetByHash(ctx context.Context, hash string) (*domain.APIKey, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepository) GetByOrgID(ctx context.Context, orgID string) ([]*domain.APIKey, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepository) Revoke(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAPIKeyRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func newTestAuthService(orgs *mockOrgRepository, keys *mockAPIKeyRepository, employees *mockEmployeeReader) *AuthService {
	return NewAuthService(orgs, keys, employees, &fixedUUIDGenerator{})
}

func TestAuthService_CreateOrg(t *testing.T) {
	orgs := new(mockOrgRepository)
	keys := new(mockAPIKeyRepository)
	employees := new(mockEmployeeReader)
	svc := newTestAuthService(orgs, keys, employees)

	orgs.On("Create", mock.Anything, mock.MatchedBy(func(o *domain.Organization) bool {
		return o.Name == "Acme" && o.ID != ""
	})).Return(nil)

	org, err := svc.CreateOrg(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)
	orgs.AssertExpectations(t)
}

func TestAuthService_CreateOrg_EmptyName(t *testing.T) {
	svc := newTestAuthService(new(mockOrgRepository), new(mockAPIKeyRepository), new(mockEmployeeReader))

	_, err := svc.CreateOrg(context.Background(), "")
	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestAuthService_CreateAPIKey(t *testing.T) {
	orgs := new(mockOrgRepository)
	keys := new(mockAPIKeyRepository)
	employees := new(mockEmployeeReader)
	svc := newTestAuthService(orgs, keys, employees)

	orgs.On("GetByID", mock.Anything, "org-1").Return(&domain.Organization{ID: "org-1", Name: "Acme"}, nil)
	employees.On("GetByIDForOrg", mock.Anything, "emp-1", "org-1").Return(&domain.Employee{ID: "emp-1", OrgID: "org-1"}, nil)

	var storedHash string
	keys.On("Create", mock.Anything, mock.MatchedBy(func(k *domain.APIKey) bool {
		storedHash = k.KeyHash
		return k.OrgID == "org-1" && k.EmployeeID == "emp-1" && k.Name == "ci key"
	})).Return(nil)

	token, err := svc.CreateAPIKey(context.Background(), "org-1", "emp-1", "ci key")
	require.NoError(t, err)
	assert.True(t, IsValidAPIToken(token))
	// Plaintext never reaches the repository.
	assert.NotEqual(t, token, storedHash)
	assert.Equal(t, hashToken(token), storedHash)
}

func TestAuthService_CreateAPIKey_UnknownEmployee(t *testing.T) {
	orgs := new(mockOrgRepository)
	keys := new(mockAPIKeyRepository)
	employees := new(mockEmployeeReader)
	svc := newTestAuthService(orgs, keys, employees)

	orgs.On("GetByID", mock.Anything, "org-1").Return(&domain.Organization{ID: "org-1", Name: "Acme"}, nil)
	employees.On("GetByIDForOrg", mock.Anything, "emp-x", "org-1").Return(nil, domain.ErrEmployeeNotFound)

	_, err := svc.CreateAPIKey(context.Background(), "org-1", "emp-x", "ci key")
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
	keys.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_ValidateAPIKey(t *testing.T) {
	orgs := new(mockOrgRepository)
	keys := new(mockAPIKeyRepository)
	employees := new(mockEmployeeReader)
	svc := newTestAuthService(orgs, keys, employees)

	token := apiKeyPrefix + "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
	stored := domain.NewAPIKey("key-1", "org-1", "emp-1", "ci key", hashToken(token), time.Now().UTC())
	keys.On("GetByHash", mock.Anything, hashToken(token)).Return(stored, nil)

	key, err := svc.ValidateAPIKey(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "org-1", key.OrgID)
	assert.Equal(t, "emp-1", key.EmployeeID)
}

func TestAuthService_ValidateAPIKey_BadFormat(t *testing.T) {
	svc := newTestAuthService(new(mockOrgRepository), new(mockAPIKeyRepository), new(mockEmployeeReader))

	_, err := svc.ValidateAPIKey(context.Background(), "not-a-key")
	assert.ErrorIs(t, err, domain.ErrInvalidAPIKey)
}

func TestAuthService_ValidateAPIKey_UnknownToken(t *testing.T) {
	orgs := new(mockOrgRepository)
	keys := new(mockAPIKeyRepository)
	employees := new(mockEmployeeReader)
	svc := newTestAuthService(orgs, keys, employees)

	token := apiKeyPrefix + "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
	keys.On("GetByHash", mock.Anything, hashToken(token)).Return(nil, domain.ErrAPIKeyNotFound)

	_, err := svc.ValidateAPIKey(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrInvalidAPIKey)
}

func TestAuthService_ValidateAPIKey_Revoked(t *testing.T) {
	orgs := new(mockOrgRepository)
	keys := new(mockAPIKeyRepository)
	employees := new(mockEmployeeReader)
	svc := newTestAuthService(orgs, keys, employees)

	token := apiKeyPrefix + "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
	revokedAt := time.Now().UTC()
	stored := domain.NewAPIKey("key-1", "org-1", "emp-1", "ci key", hashToken(token), time.Now().UTC())
	stored.RevokedAt = &revokedAt
	keys.On("GetByHash", mock.Anything, hashToken(token)).Return(stored, nil)

	_, err := svc.ValidateAPIKey(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrAPIKeyRevoked)
}

func TestIsValidAPIToken(t *testing.T) {
	valid := apiKeyPrefix + "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
	assert.True(t, IsValidAPIToken(valid))
	assert.False(t, IsValidAPIToken("sk_"+valid))
	assert.False(t, IsValidAPIToken(apiKeyPrefix+"tooshort"))
	assert.False(t, IsValidAPIToken(apiKeyPrefix+"zz112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"))
}
