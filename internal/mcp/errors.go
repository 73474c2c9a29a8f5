package mcp

import (
	"errors"
	"fmt"

	pterrors "github.com/pagetalk/pagetalk/internal/errors"
)

// JSON-RPC error codes used by the tool handlers.
const (
	// ErrCodeEmbeddingFailed indicates the embedding service failed.
	ErrCodeEmbeddingFailed = -32002

	// ErrCodeCorruptRecord indicates a stored index record could not be
	// parsed.
	ErrCodeCorruptRecord = -32003

	// Standard JSON-RPC error codes.
	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
)

// ProtocolError is a JSON-RPC error with code and message.
type ProtocolError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// invalidParams builds a parameter validation error.
func invalidParams(message string) *ProtocolError {
	return &ProtocolError{Code: ErrCodeInvalidParams, Message: message}
}

// internalError maps an internal error to the closest protocol code.
func internalError(err error) *ProtocolError {
	var te *pterrors.TalkError
	if errors.As(err, &te) {
		switch te.Code {
		case pterrors.ErrCodeEmbeddingService:
			return &ProtocolError{Code: ErrCodeEmbeddingFailed, Message: te.Message}
		case pterrors.ErrCodeRecordCorrupt:
			return &ProtocolError{Code: ErrCodeCorruptRecord, Message: te.Message}
		case pterrors.ErrCodeQueryEmpty, pterrors.ErrCodeEmptyInput, pterrors.ErrCodeInvalidDocumentID:
			return &ProtocolError{Code: ErrCodeInvalidParams, Message: te.Message}
		}
	}
	return &ProtocolError{Code: ErrCodeInternalError, Message: err.Error()}
}
