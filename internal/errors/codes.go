// Package errors provides structured error handling for pagetalk.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (storage, records)
//   - 3XX: Network errors (embedding, generator, classifier services)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates storage and record I/O errors.
	CategoryIO Category = "IO"
	// CategoryNetwork indicates external service errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeStoreIO       = "ERR_201_STORE_IO"
	ErrCodeRecordCorrupt = "ERR_202_RECORD_CORRUPT"
	ErrCodeStoreLocked   = "ERR_203_STORE_LOCKED"

	// Network errors (300-399)
	ErrCodeEmbeddingService  = "ERR_301_EMBEDDING_SERVICE"
	ErrCodeGeneratorService  = "ERR_302_GENERATOR_SERVICE"
	ErrCodeClassifierService = "ERR_303_CLASSIFIER_SERVICE"

	// Validation errors (400-499)
	ErrCodeEmptyInput        = "ERR_401_EMPTY_INPUT"
	ErrCodeDimensionMismatch = "ERR_402_DIMENSION_MISMATCH"
	ErrCodeQueryEmpty        = "ERR_403_QUERY_EMPTY"
	ErrCodeInvalidDocumentID = "ERR_404_INVALID_DOCUMENT_ID"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeIndexFailed  = "ERR_502_INDEX_FAILED"
	ErrCodeDecodeFailed = "ERR_503_DECODE_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_CONFIG_NOT_FOUND")
	numStr := code[4:7]
	if len(numStr) < 1 {
		return CategoryInternal
	}

	switch numStr[0] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeRecordCorrupt:
		// Corrupt records abort the load, but the caller treats them as a
		// missing index, so the operation as a whole continues.
		return SeverityError
	case ErrCodeEmptyInput:
		// Nothing to index means the whole document ingestion must abort.
		return SeverityFatal
	}
	return SeverityError
}

// isRetryableCode determines if an error code represents a retryable condition.
// Network-category failures are transient from the caller's point of view;
// the core itself never retries them.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeEmbeddingService, ErrCodeGeneratorService, ErrCodeClassifierService, ErrCodeStoreLocked:
		return true
	}
	return false
}
