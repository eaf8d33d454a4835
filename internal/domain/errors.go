package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
	CodeValidation       ErrorCode = "VALIDATION_FAILURE"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// Rejections surfaced with a specific reason
	CodeLimitExceeded ErrorCode = "LIMIT_EXCEEDED"

	// Lookup failures on concrete object types
	CodeNodeNotFound     ErrorCode = "NODE_NOT_FOUND"
	CodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	CodeQuizNotFound     ErrorCode = "QUIZ_NOT_FOUND"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper constructors for common errors

func NewValidationError(message string) *DomainError {
	return NewError(CodeValidation, message, nil)
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

// NewStoreUnavailableError wraps a failure returned by an external
// collaborator (database, cache). It is not retried here; retry policy
// belongs to the collaborator boundary.
func NewStoreUnavailableError(message string, cause error) *DomainError {
	return NewError(CodeStoreUnavailable, message, cause)
}

func NewLimitExceededError(message string) *DomainError {
	return NewError(CodeLimitExceeded, message, nil)
}

func NewNodeNotFoundError(nodeID string) *DomainError {
	return NewError(CodeNodeNotFound, fmt.Sprintf("Node not found with ID: %s", nodeID), nil)
}

func NewResourceNotFoundError(resourceID string) *DomainError {
	return NewError(CodeResourceNotFound, fmt.Sprintf("Resource not found with ID: %s", resourceID), nil)
}

func NewQuizNotFoundError(quizID string) *DomainError {
	return NewError(CodeQuizNotFound, fmt.Sprintf("Quiz not found with ID: %s", quizID), nil)
}
