package errors

import (
	"errors"
	"fmt"
)

// TalkError is the structured error type for pagetalk.
// It provides rich context for error handling, logging, and user presentation.
type TalkError struct {
	// Code is the unique error code (e.g., "ERR_401_EMPTY_INPUT").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried by the caller.
	Retryable bool
}

// Error implements the error interface.
func (e *TalkError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *TalkError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with TalkError.
func (e *TalkError) Is(target error) bool {
	if t, ok := target.(*TalkError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *TalkError) WithDetail(key, value string) *TalkError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new TalkError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *TalkError {
	return &TalkError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a TalkError from an existing error.
// The error's message becomes the TalkError message.
func Wrap(code string, err error) *TalkError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// EmptyInput creates the error returned when a document has no indexable text.
// Fatal to ingestion; never retried automatically.
func EmptyInput(message string) *TalkError {
	return New(ErrCodeEmptyInput, message, nil)
}

// EmbeddingService creates an error for embedding capability failures
// (quota, network, auth). The core propagates these without retrying.
func EmbeddingService(message string, cause error) *TalkError {
	return New(ErrCodeEmbeddingService, message, cause)
}

// GeneratorService creates an error for text-generation capability failures.
func GeneratorService(message string, cause error) *TalkError {
	return New(ErrCodeGeneratorService, message, cause)
}

// CorruptRecord creates the error surfaced when a persisted index record
// cannot be parsed. Callers treat it as a missing index but log it distinctly.
func CorruptRecord(message string, cause error) *TalkError {
	return New(ErrCodeRecordCorrupt, message, cause)
}

// DimensionMismatch creates the fatal error raised when an embedding
// dimension does not match the index dimension.
func DimensionMismatch(expected, got int) *TalkError {
	return New(ErrCodeDimensionMismatch,
		fmt.Sprintf("embedding dimension mismatch: expected %d, got %d", expected, got), nil)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *TalkError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// StoreIO creates a storage I/O error.
func StoreIO(message string, cause error) *TalkError {
	return New(ErrCodeStoreIO, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *TalkError {
	return New(ErrCodeInternal, message, cause)
}

// IsEmptyInput reports whether err is an empty-input error.
func IsEmptyInput(err error) bool {
	return hasCode(err, ErrCodeEmptyInput)
}

// IsEmbeddingService reports whether err is an embedding capability failure.
func IsEmbeddingService(err error) bool {
	return hasCode(err, ErrCodeEmbeddingService)
}

// IsCorruptRecord reports whether err is a corrupt persisted record.
func IsCorruptRecord(err error) bool {
	return hasCode(err, ErrCodeRecordCorrupt)
}

// IsRetryable checks if an error is retryable by the caller.
func IsRetryable(err error) bool {
	var te *TalkError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	var te *TalkError
	if errors.As(err, &te) {
		return te.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a TalkError anywhere in the chain.
// Returns empty string if no TalkError is present.
func GetCode(err error) string {
	var te *TalkError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// GetCategory extracts the category from a TalkError anywhere in the chain.
func GetCategory(err error) Category {
	var te *TalkError
	if errors.As(err, &te) {
		return te.Category
	}
	return ""
}

func hasCode(err error, code string) bool {
	var te *TalkError
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}
