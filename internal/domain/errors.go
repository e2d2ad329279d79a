package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeConfiguration    = "CONFIGURATION_ERROR"
	ErrCodeProviderFailure  = "PROVIDER_FAILURE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidChunkConfig   = NewDomainError(ErrCodeValidation, "chunk overlap must be smaller than chunk size")
	ErrInvalidLeaveType     = NewDomainError(ErrCodeValidation, "invalid leave type")
	ErrInvalidMessageRole   = NewDomainError(ErrCodeValidation, "invalid message role")
	ErrInvalidTopK          = NewDomainError(ErrCodeValidation, "top_k must be between 1 and 20")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrPolicyNotFound       = NewDomainError(ErrCodeNotFound, "policy document not found")
	ErrEmployeeNotFound     = NewDomainError(ErrCodeNotFound, "employee not found")
	ErrConversationNotFound = NewDomainError(ErrCodeNotFound, "conversation not found")
	ErrOrganizationNotFound = NewDomainError(ErrCodeNotFound, "organization not found")
	ErrAPIKeyNotFound       = NewDomainError(ErrCodeNotFound, "api key not found")
)

// Configuration errors. These surface once at provider construction; the
// affected adapter then runs in mock mode instead of failing requests.
var (
	ErrUnknownChatProvider      = NewDomainError(ErrCodeConfiguration, "unknown chat provider")
	ErrUnknownEmbeddingProvider = NewDomainError(ErrCodeConfiguration, "unknown embedding provider")
	ErrMissingProviderKey       = NewDomainError(ErrCodeConfiguration, "provider api key is not configured")
)

// Provider errors
var (
	ErrProviderFailure = NewDomainError(ErrCodeProviderFailure, "ai provider call failed")
)

// Authorization errors
var (
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
	ErrAPIKeyRevoked = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")
)

// Operation errors
var (
	ErrPolicyInactive       = NewDomainError(ErrCodeInvalidOperation, "policy document is inactive")
	ErrConversationClosed   = NewDomainError(ErrCodeInvalidOperation, "conversation is closed")
	ErrStorageNotConfigured = NewDomainError(ErrCodeInvalidOperation, "document storage is not configured")
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
)
