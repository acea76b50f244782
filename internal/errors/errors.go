// Package errors defines stable error codes for crateprobe failure modes.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// StdSourceMissing indicates an expanded standard-library source file was not found
	StdSourceMissing ErrorCode = "STD_SOURCE_MISSING"
	// StdParseFailed indicates expanded standard-library source could not be parsed
	StdParseFailed ErrorCode = "STD_PARSE_FAILED"
	// CrateParseFailed indicates a crate's expanded source could not be parsed
	CrateParseFailed ErrorCode = "CRATE_PARSE_FAILED"
	// ExpandFailed indicates cargo expand did not produce output
	ExpandFailed ErrorCode = "EXPAND_FAILED"
	// LintFailed indicates the clippy warning count could not be collected
	LintFailed ErrorCode = "LINT_FAILED"
	// ManifestInvalid indicates Cargo.toml could not be read or decoded
	ManifestInvalid ErrorCode = "MANIFEST_INVALID"
	// SnapshotCorrupt indicates an index snapshot exists but failed to decode
	SnapshotCorrupt ErrorCode = "SNAPSHOT_CORRUPT"
	// StoreFailed indicates a results-store operation failed
	StoreFailed ErrorCode = "STORE_FAILED"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// ProbeError represents a crateprobe error with a stable code and message
type ProbeError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new ProbeError
func New(code ErrorCode, message string, cause error) *ProbeError {
	return &ProbeError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Newf creates a new ProbeError with a formatted message
func Newf(code ErrorCode, cause error, format string, args ...interface{}) *ProbeError {
	return &ProbeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		cause:   cause,
	}
}

// Error implements the error interface
func (e *ProbeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ProbeError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *ProbeError) WithDetails(details interface{}) *ProbeError {
	e.Details = details
	return e
}

// HasCode reports whether err is (or wraps) a ProbeError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var pe *ProbeError
	if stderrors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
