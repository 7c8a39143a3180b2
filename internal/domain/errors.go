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

// Is lets a wrapped DomainError match its sentinel by code and message.
func (e *DomainError) Is(target error) bool {
	other, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
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
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyTranscript     = NewDomainError(ErrCodeValidation, "transcript text cannot be empty")
	ErrEmptyQuestion       = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrEmptyUserID         = NewDomainError(ErrCodeValidation, "user_id is required")
	ErrMissingTranscriptID = NewDomainError(ErrCodeValidation, "transcript id is required")
)

// ErrTranscriptNotFound covers both a missing transcript and one owned by a
// different user; the two cases are deliberately indistinguishable to the
// caller.
var ErrTranscriptNotFound = NewDomainError(ErrCodeNotFound, "transcript not found or not owned by user")

// ErrTranscriptAlreadyExists signals an id collision in the record store.
var ErrTranscriptAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "transcript already exists")

// Infrastructure failure kinds. Call sites wrap the concrete cause with
// NewDomainErrorWithCause using the same code and message so the failure
// class stays matchable via errors.Is.
var (
	ErrEmbeddingFailed      = NewDomainError(ErrCodeInternalError, "embedding generation failed")
	ErrIndexPersistence     = NewDomainError(ErrCodeInternalError, "vector index persistence failed")
	ErrRecordStoreFailure   = NewDomainError(ErrCodeInternalError, "record store operation failed")
	ErrUpstreamModelFailure = NewDomainError(ErrCodeInternalError, "answer generation failed")
)
