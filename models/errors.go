package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	// Configuration errors: the field spec itself is broken. Fatal to the
	// document being extracted, never to the whole run.
	ErrCodeBadFieldSpec      = "INVALID_FIELD_SPEC"
	ErrCodeAmbiguousSelector = "AMBIGUOUS_SELECTOR"

	// Store classification: duplicates are recoverable (skip and continue),
	// connection loss and quota exhaustion abort the run.
	ErrCodeDuplicate      = "DUPLICATE_ARTICLE"
	ErrCodeConnectionLost = "STORE_CONNECTION_LOST"
	ErrCodeQuotaReached   = "STORE_QUOTA_REACHED"

	// API surface.
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeUnknownSite  = "UNKNOWN_SITE"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SiftError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type SiftError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *SiftError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SiftError) Unwrap() error {
	return e.Err
}

// NewSiftError creates a new SiftError.
func NewSiftError(code, message string, err error) *SiftError {
	return &SiftError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *SiftError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// CodeOf returns the error code carried by err, or ErrCodeInternal when err
// is not a SiftError.
func CodeOf(err error) string {
	var se *SiftError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsConfiguration reports whether err is a selector/field-spec configuration
// error. These abort extraction of the current document only.
func IsConfiguration(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeBadFieldSpec || code == ErrCodeAmbiguousSelector
}

// IsRecoverable reports whether err is a store failure the reprocessing loop
// may log and skip (currently only duplicate inserts).
func IsRecoverable(err error) bool {
	return CodeOf(err) == ErrCodeDuplicate
}

// IsNonRecoverable reports whether err is a store failure that must abort
// the whole run.
func IsNonRecoverable(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeConnectionLost || code == ErrCodeQuotaReached
}
