package domain

import (
	"errors"
	"fmt"
)

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
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeDecode        = "DECODE_ERROR"
	ErrCodeEmbedding     = "EMBEDDING_UNAVAILABLE"
	ErrCodeIndex         = "INDEX_UNAVAILABLE"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Collaborator failures. These abort the affected document or query only;
// batch ingestion continues and the caller decides whether to retry.
var (
	ErrEmbeddingUnavailable = NewDomainError(ErrCodeEmbedding, "embedding service unavailable")
	ErrIndexUnavailable     = NewDomainError(ErrCodeIndex, "vector index unavailable")
)

// Validation errors
var (
	ErrInvalidSourceType    = NewDomainError(ErrCodeValidation, "invalid document source type")
	ErrInvalidStrategy      = NewDomainError(ErrCodeConfiguration, "unknown chunking strategy")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// NewDecodeError wraps a cause as a DECODE_ERROR for the given document. The
// document is skipped and the batch continues.
func NewDecodeError(documentID string, cause error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeDecode,
		fmt.Sprintf("document %s content unreadable", documentID), cause)
}

// NewConfigurationError reports an invalid configuration value. Configuration
// errors are fatal at startup, before any ingestion or query work begins.
func NewConfigurationError(message string) *DomainError {
	return NewDomainError(ErrCodeConfiguration, message)
}

// NewEmbeddingUnavailable wraps a transport or auth failure from the embedding
// gateway.
func NewEmbeddingUnavailable(cause error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeEmbedding, "embedding service unavailable", cause)
}

// NewIndexUnavailable wraps a failure from the vector index.
func NewIndexUnavailable(cause error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeIndex, "vector index unavailable", cause)
}

func hasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsDecodeError reports whether err is a DECODE_ERROR.
func IsDecodeError(err error) bool { return hasCode(err, ErrCodeDecode) }

// IsEmbeddingUnavailable reports whether err is an EMBEDDING_UNAVAILABLE error.
func IsEmbeddingUnavailable(err error) bool { return hasCode(err, ErrCodeEmbedding) }

// IsIndexUnavailable reports whether err is an INDEX_UNAVAILABLE error.
func IsIndexUnavailable(err error) bool { return hasCode(err, ErrCodeIndex) }

// IsConfigurationError reports whether err is a CONFIGURATION_ERROR.
func IsConfigurationError(err error) bool { return hasCode(err, ErrCodeConfiguration) }
